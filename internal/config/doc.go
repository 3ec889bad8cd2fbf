// Package config loads the vpatch.json configuration of the vpatch
// command.
//
// # Configuration File Structure
//
//	{
//	  "validate": true,
//	  "logLevel": "info",
//	  "host": "html",
//	  "modules": ["attributes", "class", "style", "metrics"],
//	  "serve": {
//	    "addr": ":8080",
//	    "wsPath": "/ws",
//	    "metricsPath": "/metrics"
//	  },
//	  "metrics": {
//	    "namespace": "vpatch",
//	    "subsystem": ""
//	  }
//	}
//
// A missing file is not an error; Load returns the defaults. Command-line
// flags override loaded values.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
