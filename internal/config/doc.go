// Package config loads tablenode configuration.
//
// Configuration lives in tablenode.json (or tablenode.yaml) in the working
// directory. Every field has a default, so an empty or missing file is valid.
//
// # Configuration File Structure
//
//	{
//	  "demo": {
//	    "items": 32,
//	    "deleteDelay": "2s",
//	    "exitDuration": "300ms",
//	    "width": 375,
//	    "height": 812
//	  },
//	  "pool": {
//	    "caps": {"card": 32, "button": 32}
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "inspector": {
//	    "addr": "localhost:7070",
//	    "clientBuffer": 16
//	  },
//	  "metrics": {
//	    "namespace": "tablenode"
//	  }
//	}
//
// The same structure in YAML:
//
//	demo:
//	  items: 32
//	  deleteDelay: 2s
//	log:
//	  level: debug
package config
