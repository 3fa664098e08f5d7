package cmd

import (
	"fmt"
	"os"

	"github.com/KostasZigo/gitcore/internal/objects"
	"github.com/KostasZigo/gitcore/utils"
	"github.com/spf13/cobra"
)

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object <filepath>",
	Short: "Compute object hash and optionally store the object from a file",
	Long: `Compute the object id (SHA-1 hash) for a file's content.
Optionally write the resulting object into the objects folder.

Examples:
  # Compute hash without storing
  gogit hash-object myfile.txt

  # Compute hash and store in .git/objects
  gogit hash-object -w myfile.txt

  # Store a hand written tree
  gogit hash-object -w -t tree tree.bin`,
	SilenceUsage: true,
	Args:         exactArgs(1, "filepath"),
	RunE:         runHashObject,
}

var (
	writeFlag      bool
	objectTypeFlag string
)

func init() {
	rootCmd.AddCommand(hashObjectCmd)

	hashObjectCmd.Flags().BoolVarP(&writeFlag, "write", "w", false, "Write the object into the objects folder")
	hashObjectCmd.Flags().StringVarP(&objectTypeFlag, "type", "t", string(utils.BlobObjectType), "Object type: blob, tree or commit")
}

// runHashObject computes hash and optionally stores the object.
func runHashObject(cmd *cobra.Command, args []string) error {
	objectType, err := utils.ParseObjectType(objectTypeFlag)
	if err != nil {
		return err
	}

	content, err := readObjectContent(args[0], objectType)
	if err != nil {
		return err
	}

	hash, err := utils.ComputeHash(content, objectType)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)

	if writeFlag {
		repo, err := openRepository()
		if err != nil {
			return err
		}

		if _, err := repo.Store.Write(objectType, content); err != nil {
			return fmt.Errorf("failed to store object: %w", err)
		}
	}

	return nil
}

// readObjectContent loads the payload for hash-object. Trees and commits
// must parse so that malformed objects never reach the store.
func readObjectContent(path string, objectType utils.ObjectType) ([]byte, error) {
	if objectType == utils.BlobObjectType {
		blob, err := objects.NewBlobFromFile(path)
		if err != nil {
			return nil, err
		}
		return blob.Content(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	switch objectType {
	case utils.TreeObjectType:
		var tree *objects.Tree
		if tree, err = objects.ParseTree(content); err == nil {
			err = tree.Validate()
		}
	case utils.CommitObjectType:
		_, err = objects.ParseCommit(content)
	}
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid %s: %w", path, objectType, err)
	}
	return content, nil
}
