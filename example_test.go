package sessionscope_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/sessionscope"
)

type Cart struct {
	Items []string
}

var cart = sessionscope.Define(func(ctx context.Context) (*Cart, error) {
	return &Cart{}, nil
})

// Example shows two requests of one session sharing a cart while a second
// session gets its own.
func Example() {
	ctx := context.Background()
	mgr := sessionscope.NewManager(nil)

	alice, err := mgr.Create(ctx)
	if err != nil {
		log.Fatal(err)
	}
	bob, err := mgr.Create(ctx)
	if err != nil {
		log.Fatal(err)
	}

	// First request of alice.
	c := cart.MustGet(sessionscope.Bind(ctx, alice))
	c.Items = append(c.Items, "apples")

	// Second request of alice.
	c = cart.MustGet(sessionscope.Bind(ctx, alice))
	c.Items = append(c.Items, "pears")

	fmt.Println("alice:", cart.MustGet(sessionscope.Bind(ctx, alice)).Items)
	fmt.Println("bob:", cart.MustGet(sessionscope.Bind(ctx, bob)).Items)
	// Output:
	// alice: [apples pears]
	// bob: []
}
