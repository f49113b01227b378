package main

import (
	"flag"
	"os"

	log "github.com/golang/glog"
)

func main() {
	// We should send our own log output to stderr.
	flag.Set("logtostderr", "true")
	flag.Parse()

	k := newKansokuCli()
	if err := k.run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Exitf("%v", err)
	}
	log.Flush()
}
