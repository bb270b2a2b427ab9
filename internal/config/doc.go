// Package config loads ripple's configuration.
//
// The configuration lives in ripple.yaml or ripple.json. Missing fields
// take defaults, RIPPLE_ADDR overrides the listen address, and the result
// is validated before it is returned.
//
// # Configuration File Structure
//
//	server:
//	  addr: localhost:8080
//	  shutdownTimeout: 10s
//	  pingInterval: 30s
//	renderer:
//	  strictKeys: true
//	logging:
//	  level: debug
//	  format: json
//	snapshot:
//	  backend: s3
//	  bucket: ripple-snapshots
//	  prefix: demo/
//	  region: eu-west-1
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
