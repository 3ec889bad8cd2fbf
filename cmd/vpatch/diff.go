package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/reconcile"
	"github.com/vango-dev/vpatch/pkg/remote"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

func diffCmd(o *options) *cobra.Command {
	var (
		hostName string
		showOps  bool
	)

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Show the host mutations between two trees",
		Long: `Mount the tree in OLD, patch it to the tree in NEW and print the
resulting markup and mutation counts.

Examples:
  vpatch diff before.yaml after.yaml
  vpatch diff before.yaml after.yaml --host=mem --ops`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hostName != "" {
				o.cfg.Host = hostName
			}
			return runDiff(cmd.OutOrStdout(), o, args[0], args[1], showOps)
		},
	}

	cmd.Flags().StringVar(&hostName, "host", "", "Host adapter: html or mem (default from vpatch.json)")
	cmd.Flags().BoolVar(&showOps, "ops", false, "Print the recorded op stream of the patch")

	return cmd
}

func runDiff(w io.Writer, o *options, oldPath, newPath string, showOps bool) error {
	prev, err := readTree(oldPath)
	if err != nil {
		return err
	}
	next, err := readTree(newPath)
	if err != nil {
		return err
	}

	ht, err := newHostTree(o.cfg.Host)
	if err != nil {
		return err
	}
	var api host.Adapter = ht.api
	var rec *remote.Recorder
	if showOps {
		rec = remote.NewRecorder(ht.api, ht.root)
		api = rec
	}
	p := o.newPatcher(api, newModuleSet(o.cfg, prometheus.NewRegistry()))

	tree, err := p.Mount(ht.root, prev)
	if err != nil {
		return err
	}
	if rec != nil {
		rec.Flush()
	}
	if _, err := p.Patch(tree, next); err != nil {
		return err
	}

	fmt.Fprintln(w, ht.markup())
	printStats(w, p.Stats())

	if rec != nil {
		ops := rec.Flush()
		fmt.Fprintf(w, "\nops (%d):\n", len(ops))
		for _, op := range ops {
			info(w, "%s", op)
		}
	}
	return nil
}

func printStats(w io.Writer, s reconcile.Stats) {
	fmt.Fprintf(w, "\ncreated %d, patched %d, removed %d, destroyed %d, moved %d",
		s.Created, s.Patched, s.Removed, s.Destroyed, s.Moved)
	if s.Replaced {
		fmt.Fprint(w, ", root replaced")
	}
	fmt.Fprintln(w)
}

// mount mounts the tree in path into a fresh host tree.
func mount(o *options, path string) (*hostTree, *vdom.VNode, error) {
	v, err := readTree(path)
	if err != nil {
		return nil, nil, err
	}
	ht, err := newHostTree(o.cfg.Host)
	if err != nil {
		return nil, nil, err
	}
	p := o.newPatcher(ht.api, newModuleSet(o.cfg, prometheus.NewRegistry()))
	tree, err := p.Mount(ht.root, v)
	if err != nil {
		return nil, nil, err
	}
	return ht, tree, nil
}
