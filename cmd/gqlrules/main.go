package main

import (
	"flag"
	"os"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/2x3systems/gqlrules/libgql/canon"
	"github.com/2x3systems/gqlrules/libgql/catalog"
	"github.com/2x3systems/gqlrules/libgql/pipe"
	"github.com/2x3systems/gqlrules/libgql/worker"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

func main() {
	verbosity := "1"

	// A missing .env is fine
	_ = godotenv.Load()
	if v := os.Getenv("GQL_LOG_V"); v != "" {
		verbosity = v
	}

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", verbosity)
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	err := run()
	if err != nil {
		klog.Errorf("gqlrules: %v", err)
	}
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := gql.LoadConfig(os.Getenv("GQL_CONFIG"))
	if err != nil {
		return err
	}
	if root := os.Getenv("GQL_ROOT_DIR"); root != "" {
		cfg.RootDir = root
	}

	if err = os.MkdirAll(cfg.RootDir, 0755); err != nil {
		return errors.Wrapf(gql.ErrFile, "%v", err)
	}

	fifo := &pipe.Fifo{Path: cfg.PipePath()}
	if cfg.CreatePipe {
		if err = fifo.Ensure(); err != nil {
			return err
		}
	}

	cat, err := catalog.Open(catalog.Opts{
		DbPathName: cfg.CatalogPath,
	})
	if err != nil {
		return err
	}
	defer cat.Close()

	klog.Infof("gqlrules: root %s, pipe %s, catalog %v", cfg.RootDir, fifo.Path, cat)

	w := worker.New(cfg, fifo, canon.New(), cat)
	return w.Run()
}
