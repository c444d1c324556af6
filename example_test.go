package cps_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pior/cps"
	"github.com/pior/cps/request"
)

func ExampleClient_Do() {
	client, err := cps.NewClient(cps.NewStaticServers("localhost:5550"), cps.Config{
		Storage:           "library",
		NewCircuitBreaker: cps.NewCircuitBreakerConfig(1, time.Minute, 10*time.Second),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := request.Search(request.Object{"title": "dune"}).
		SetOffset(0).
		SetDocs(20).
		SetList(request.Object{"title": "yes"})

	resp, err := client.Do(ctx, req)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s answered in %v: %s\n", resp.Server, resp.Duration, resp.Body)
}
