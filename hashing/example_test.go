package hashing_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hasbyte1/go-yescrypt/hashing"
)

// Example_structured demonstrates the default self-describing records.
func Example_structured() {
	// Cheap parameters keep the example fast; use the defaults in production.
	h, err := hashing.New(hashing.Options{N: 1 << 10, R: 8})
	if err != nil {
		log.Fatal(err)
	}
	defer h.Close()

	stored, err := h.Make([]byte("hunter2"))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(h.Compare([]byte("hunter2"), stored, nil))
	fmt.Println(errors.Is(h.Compare([]byte("hunter3"), stored, nil), hashing.ErrWrongPassword))
	// Output:
	// <nil>
	// true
}

// Example_compact demonstrates crypt(3) compatible "$y$" strings.
func Example_compact() {
	h, err := hashing.New(hashing.Options{N: 1 << 10, R: 8, Mode: hashing.ModeCompact})
	if err != nil {
		log.Fatal(err)
	}
	defer h.Close()

	stored, err := h.Hash([]byte("hunter2"), []byte("per-user-salt"))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(stored[:7]))
	fmt.Println(h.Compare([]byte("hunter2"), stored, nil))
	// Output:
	// $y$j75$
	// <nil>
}

// Example_raw demonstrates raw keys, where the caller keeps the salt.
func Example_raw() {
	h, err := hashing.New(hashing.Options{N: 1 << 10, R: 8, Mode: hashing.ModeRaw})
	if err != nil {
		log.Fatal(err)
	}
	defer h.Close()

	salt := []byte("stored-next-to-the-key")
	key, err := h.Digest([]byte("hunter2"), salt, nil, 64)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(key))
	fmt.Println(h.Compare([]byte("hunter2"), key, salt))
	// Output:
	// 64
	// <nil>
}

// ExampleInspect shows how to read parameters back out of an artifact.
func ExampleInspect() {
	h, err := hashing.New(hashing.Options{N: 1 << 10, R: 8, Mode: hashing.ModeCompact})
	if err != nil {
		log.Fatal(err)
	}
	defer h.Close()

	stored, _ := h.Make([]byte("hunter2"))
	info, err := hashing.Inspect(stored)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(info.Mode, info.Params.N, info.Params.R, len(info.Salt))
	// Output: compact 1024 8 32
}

// ExamplePool demonstrates sharing hashers between goroutines.
func ExamplePool() {
	p, err := hashing.NewPool(hashing.Options{N: 1 << 10, R: 8}, 2)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	ctx := context.Background()
	stored, err := p.Make(ctx, []byte("hunter2"))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(p.Compare(ctx, []byte("hunter2"), stored, nil))
	// Output: <nil>
}
