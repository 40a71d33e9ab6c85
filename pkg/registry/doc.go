// Package registry is a small read-only client for a Confluent compatible
// schema registry (Redpanda, Confluent Platform, Apicurio in ccompat mode).
//
// Only the lookups the document generator needs are implemented: the latest
// schema document of a subject, plus the URL used to reference that schema
// from a document.
//
// Basic usage:
//
//	client, err := registry.NewClient(registry.Config{URL: "http://localhost:18081"})
//	if err != nil {
//		return err
//	}
//	raw, err := client.LatestSchema(ctx, "orders.created-value")
//
// Responses are cached per subject for the lifetime of the client.
package registry
