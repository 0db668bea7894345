/*
Grottoserver starts a Grotto server and begins listening for new connections.

Usage:

	grottoserver [flags]
	grottoserver [flags] -l [[ADDRESS]:PORT]

Once started, the Grotto server will listen for HTTP requests and respond to
them using REST protocol. By default, it will listen on localhost:8080. This
can be changed with the --listen/-l flag (or config via environment var). The
flag argument must be either a full address with port, such as
"192.168.0.2:6001", or just the port preceeded by a colon, such as ":6001".

The flags are:

	-v, --version
		Give the current version of the Grotto server and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		GROTTO_LISTEN_ADDRESS, and if that is not given, will default to
		localhost:8080.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the following:
		inmem, sqlite. inmem has no further params. sqlite needs the path to the
		data directory such as sqlite:path/to/db_dir. If not given, will default
		to the value of environment variable GROTTO_DATABASE. If no DB driver is
		specified or an empty one is given, an in-memory database is
		automatically selected.
*/
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/dgould/grotto/internal/version"
	"github.com/dgould/grotto/server"
)

const (
	EnvListen = "GROTTO_LISTEN_ADDRESS"
	EnvDB     = "GROTTO_DATABASE"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of Grotto server and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
)

func main() {
	godotenv.Load()
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (Grotto v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	args := pflag.Args()

	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	// get address info
	port := 0
	addr := ""
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr != "" {
		bindParts := strings.SplitN(listenAddr, ":", 2)
		if len(bindParts) != 2 {
			fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
			os.Exit(1)
		}

		var err error

		addr = bindParts[0]
		port, err = strconv.Atoi(bindParts[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%q is not a valid port number.\nDo -h for help.\n", bindParts[1])
			os.Exit(1)
		}
	}

	// assemble a server config
	var cfg server.Config

	// look at db connection string
	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr != "" {
		db, err := server.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Not a valid DB string: %q: %s\nDo -h for help.\n", dbConnStr, err.Error())
			os.Exit(1)
		}
		cfg.DB = db
	}

	// configuration complete, initialize the server
	gs, err := server.New(cfg)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}
	log.Printf("DEBUG Server initialized")

	// okay, now actually launch it
	log.Printf("INFO  Starting Grotto server %s...", version.ServerCurrent)
	gs.ServeForever(addr, port)
}
