// Package manifest models the route manifest produced by a file-based router.
//
// A manifest is a tree of screens. Every node is either a Leaf, naming a
// single route segment, or a Branch, naming a path prefix and its child
// screens. The variant is decided once, when the manifest is parsed:
//
//	{
//	  "screens": {
//	    "index": "",
//	    "about": "about",
//	    "(tabs)": {
//	      "path": "(tabs)",
//	      "screens": {"home": "home", "settings": "settings"}
//	    }
//	  }
//	}
//
// A JSON string parses to a Leaf. A JSON object parses to a Branch, unless
// its "screens" are missing or empty, in which case it degenerates to a Leaf
// whose segment is the object's "path".
//
// Scanner builds the same structure from a routes directory on disk.
package manifest
