package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codewriterrussian/voc-selftest/internal/backend"
	"github.com/codewriterrussian/voc-selftest/internal/questions"
)

// upload: local file -> JSONBin.
func uploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Replace the JSONBin document with the local file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.transfer(cmd, backend.KindFile, backend.KindJSONBin)
		},
	}
}

// download: JSONBin -> local file.
func downloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Replace the local file with the JSONBin document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.transfer(cmd, backend.KindJSONBin, backend.KindFile)
		},
	}
}

func (a *app) transfer(cmd *cobra.Command, fromKind, toKind string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	src, closeSrc, err := a.openBackend(ctx, fromKind)
	if err != nil {
		return err
	}
	defer closeSrc()

	dst, closeDst, err := a.openBackend(ctx, toKind)
	if err != nil {
		return err
	}
	defer closeDst()

	counts, err := questions.Copy(ctx, src, dst)
	if err != nil {
		return err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Fprintf(cmd.OutOrStdout(), "copied %d categories (%d questions) from %s to %s\n",
		len(counts), total, src.Name(), dst.Name())
	return nil
}

func (a *app) openBackend(ctx context.Context, kind string) (backend.Backend, func(), error) {
	b, closeFn, err := backend.Open(ctx, a.backendConfig(kind))
	if err != nil {
		return nil, nil, fmt.Errorf("%s backend: %w", kind, err)
	}
	return b, closeFn, nil
}
