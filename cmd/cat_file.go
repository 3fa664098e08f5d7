package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/KostasZigo/gitcore/internal/objects"
	"github.com/KostasZigo/gitcore/utils"
	"github.com/spf13/cobra"
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file (-t | -s | -p) <object>",
	Short: "Show type, size or content of a stored object",
	Long: `Read an object from .git/objects and print one of:
  -t  its type (blob, tree or commit)
  -s  its content size in bytes
  -p  its content; trees are listed one entry per line`,
	SilenceUsage: true,
	Args:         exactArgs(1, "object"),
	RunE:         runCatFile,
}

var (
	catTypeFlag   bool
	catSizeFlag   bool
	catPrettyFlag bool
)

func init() {
	rootCmd.AddCommand(catFileCmd)

	catFileCmd.Flags().BoolVarP(&catTypeFlag, "type", "t", false, "Show object type")
	catFileCmd.Flags().BoolVarP(&catSizeFlag, "size", "s", false, "Show object size")
	catFileCmd.Flags().BoolVarP(&catPrettyFlag, "pretty", "p", false, "Pretty-print object content")
	catFileCmd.MarkFlagsMutuallyExclusive("type", "size", "pretty")
	catFileCmd.MarkFlagsOneRequired("type", "size", "pretty")
}

func runCatFile(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	objectType, content, err := repo.Store.Read(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case catTypeFlag:
		fmt.Fprintln(out, objectType)
	case catSizeFlag:
		fmt.Fprintln(out, len(content))
	default:
		return prettyPrint(out, objectType, content)
	}
	return nil
}

func prettyPrint(out io.Writer, objectType utils.ObjectType, content []byte) error {
	if objectType != utils.TreeObjectType {
		_, err := out.Write(content)
		return err
	}

	tree, err := objects.ParseTree(content)
	if err != nil {
		return err
	}
	for _, entry := range tree.Entries() {
		mode, err := strconv.ParseUint(string(entry.Mode()), 8, 32)
		if err != nil {
			return errors.New("invalid tree entry mode " + string(entry.Mode()))
		}
		fmt.Fprintf(out, "%06o %s %s\t%s\n", mode, entryType(entry), entry.Hash(), entry.Name())
	}
	return nil
}

func entryType(entry objects.TreeEntry) utils.ObjectType {
	switch {
	case entry.IsDirectory():
		return utils.TreeObjectType
	case entry.Mode() == objects.ModeSubmodule:
		return utils.CommitObjectType
	default:
		return utils.BlobObjectType
	}
}
