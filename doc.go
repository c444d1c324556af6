// Package cps is a client for an XML document search engine.
//
// Requests are built with the request subpackage, serialized as XML and
// sent over TCP, each body framed by an 8-byte header (magic, then length).
// The client keeps one connection per server and routes every request for a
// storage to the same server, so transactions stay on one connection.
//
// Basic usage:
//
//	client, err := cps.NewClient(cps.NewStaticServers("localhost:5550"), cps.Config{
//		Storage: "library",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.Do(ctx, request.Search("dune").SetDocs(10))
//
// Responses are returned as raw XML; decoding them is left to the caller.
package cps
