// Package config loads streamstore server configuration.
//
// Configuration comes from three layers, later ones winning:
//
//  1. built-in defaults (Default)
//  2. a YAML file, usually streamstore.yaml; ${VAR} references are expanded
//  3. STREAMSTORE_* environment variables, optionally read from .env files
//
// # Configuration File Structure
//
//	server:
//	  address: ":8080"
//	  read_buffer: 1024
//	  write_buffer: 1024
//	  max_message_size: 65536
//	metrics:
//	  enabled: true
//	  namespace: streamstore
//	log:
//	  level: info
//	  format: text
//	runtime:
//	  debug: false
//	  max_render_passes: 100
//	publish:
//	  region: us-east-1
//	  endpoint: http://localhost:9000
//	  path_style: true
//
// # Usage
//
//	cfg, err := config.Load("streamstore.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Server.Address)
package config
