// Package config provides configuration parsing for export projects.
//
// The configuration is stored in vango.json at the project root. A .env
// file next to it, and the process environment, override selected values.
//
// # Configuration File Structure
//
//	{
//	  "build": {
//	    "output": "dist"
//	  },
//	  "paths": {
//	    "routes": "app/routes"
//	  },
//	  "export": {
//	    "scripts": ["/bundle.js"],
//	    "minify": true,
//	    "strict": false,
//	    "concurrency": 8
//	  },
//	  "dev": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "command": ["vango", "dev"],
//	    "readyTimeout": "30s"
//	  },
//	  "publish": {
//	    "bucket": "my-site",
//	    "prefix": "preview/",
//	    "region": "eu-west-1"
//	  },
//	  "preview": {
//	    "host": "localhost",
//	    "port": 4000
//	  }
//	}
//
// # Environment
//
//	VANGO_DEV_URL         dev.url
//	VANGO_EXPORT_BUCKET   publish.bucket
//	VANGO_EXPORT_PREFIX   publish.prefix
//	AWS_REGION            publish.region
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Output:", cfg.OutputPath())
package config
