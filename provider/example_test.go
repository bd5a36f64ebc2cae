package provider_test

import (
	"context"
	"fmt"
	"log"

	"paradox/model"
	"paradox/provider"
	"paradox/provider/testutil"
)

// ExampleNewProvider demonstrates creating an Ollama provider using the factory.
func ExampleNewProvider() {
	p, err := provider.NewProvider(provider.Config{
		Type:    provider.ProviderTypeOllama,
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Provider created: %T (%s)\n", p, p.ID())
	// Output: Provider created: *provider.OllamaProvider (ollama)
}

// ExampleAdapter_Send demonstrates streaming through an adapter. A mock
// provider stands in for a live backend.
func ExampleAdapter_Send() {
	mock := testutil.NewMockProvider("gemini", "<think>", "plan", "</think>", "Done.")
	a := provider.NewAdapter(mock, provider.Variant{Name: "generation", Model: "gemini-2.0-flash"})

	for tok, err := range a.Send(context.Background(), provider.SendRequest{
		Message: "Say done",
		Depth:   model.DepthReasoning,
	}) {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(tok)
	}
	// Output:
	// <think>
	// plan
	// </think>
	// Done.
}
