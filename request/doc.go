// Package request builds the requests sent to the document search engine.
//
// A Request is a command name plus an ordered bag of named parameters and
// two overflow fields for document identifiers and document payloads. The
// package only normalizes caller intent into that shape; the server does all
// semantic validation.
//
// # Constructors
//
// Every command has a constructor function that fixes the command and sets
// the parameters relevant to it:
//
//	request.Search("hello world").SetOffset(0).SetDocs(10)
//	request.Insert(request.RawDocument("<id>1</id><title>a</title>"))
//	request.Retrieve("id1", "id2")
//	request.ListFirst(request.Object{"title": "yes"}, 5, 20)
//	request.Alternatives("foo", 0.5, 0.3, 0.1)
//	request.BeginTransaction()
//
// # Dynamic input
//
// FromTemplate builds a request from a pre-built Object, for instance one
// decoded from JSON. A "command" field overrides the default command, "_id"
// and "_document" fill the overflow fields, and every other field goes
// through Apply.
//
// Apply and the Set* methods never fail: a value of the wrong kind is
// dropped and the request keeps its previous state.
//
//	req := request.FromTemplate(request.CmdSearch, request.Object{
//	    "query":  "hello",
//	    "docs":   10,
//	    "offset": "ten", // dropped
//	})
//
// # Serialization
//
// WriteRequest renders a request as an XML document whose root element is
// the command:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<search><query>hello</query><docs>10</docs></search>
//
// Document identifiers and payloads are written as <id> and <document>
// elements. Framing the document for the network is left to the caller.
//
// # Thread Safety
//
// Requests share no state; independent requests may be built concurrently.
// A single Request must not be mutated from several goroutines.
package request
