package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.uber.org/zap"

	"github.com/bsontree/bsontree"
)

func newLogger(flags *rootFlags) (*zap.Logger, error) {
	if flags.debug {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

func loadDocument(path string, mode bsontree.InPlaceMode) (*bsontree.Document, []byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}
	doc, err := bsontree.FromBytes(buf, mode)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s", path)
	}
	return doc, buf, nil
}

// findPath walks a dotted path from the root.  Numeric components index
// into arrays; everything else matches field names.
func findPath(root bsontree.Element, path string) (bsontree.Element, error) {
	current := root
	for _, component := range strings.Split(path, ".") {
		if component == "" {
			return root.Document().End(), errors.Errorf("empty path component in %q", path)
		}
		next := current.Document().End()
		if current.Type() == bsontype.Array {
			want, err := strconv.Atoi(component)
			if err != nil {
				return next, errors.Errorf("%q indexes an array but is not a number", component)
			}
			child := current.LeftChild()
			for i := 0; child.Ok() && i < want; i++ {
				child = child.RightSibling()
			}
			next = child
		} else {
			for child := current.LeftChild(); child.Ok(); child = child.RightSibling() {
				if child.FieldName() == component {
					next = child
					break
				}
			}
		}
		if !next.Ok() {
			return next, errors.Errorf("path component %q not found", component)
		}
		current = next
	}
	return current, nil
}

func newDumpCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "print a BSON file as extended JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDocument(args[0], bsontree.InPlaceDisabled)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.String())
			return nil
		},
	}
}

func newGetCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get FILE PATH",
		Short: "print one element of a BSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDocument(args[0], bsontree.InPlaceDisabled)
			if err != nil {
				return err
			}
			elem, err := findPath(doc.Root(), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), elem.String())
			return nil
		},
	}
}

func newSetCommand(flags *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "set FILE PATH TYPE VALUE",
		Short: "replace a leaf value, patching in place when possible",
		Long: "Replace the value at PATH.  TYPE is one of int32, int64, double, " +
			"bool, or string.  Fixed-size replacements of equal encoded size " +
			"are applied as byte patches to the original file image; anything " +
			"else re-serializes the whole document.",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(flags)
			if err != nil {
				return err
			}
			defer logger.Sync()

			file, path, typeName, literal := args[0], args[1], args[2], args[3]
			doc, original, err := loadDocument(file, bsontree.InPlaceEnabled)
			if err != nil {
				return err
			}
			elem, err := findPath(doc.Root(), path)
			if err != nil {
				return err
			}
			if err := setLiteral(elem, typeName, literal); err != nil {
				return err
			}

			output := out
			if output == "" {
				output = file
			}
			if damages, source, ok := doc.InPlaceUpdates(); ok {
				logger.Debug("applying in-place damage",
					zap.Int("events", len(damages)),
					zap.Int("source_bytes", len(source)))
				patched := append([]byte(nil), original...)
				damages.Apply(patched, source)
				for _, ev := range damages {
					fmt.Fprintf(cmd.OutOrStdout(), "patch target=%d source=%d size=%d\n",
						ev.TargetOffset, ev.SourceOffset, ev.Size)
				}
				return writeFile(output, patched)
			}
			logger.Debug("in-place update not possible, re-serializing")
			return writeFile(output, doc.Bytes())
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: overwrite FILE)")
	return cmd
}

func setLiteral(elem bsontree.Element, typeName, literal string) error {
	switch typeName {
	case "int32":
		v, err := strconv.ParseInt(literal, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "parsing %q as int32", literal)
		}
		return elem.SetValueInt32(int32(v))
	case "int64":
		v, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "parsing %q as int64", literal)
		}
		return elem.SetValueInt64(v)
	case "double":
		v, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return errors.Wrapf(err, "parsing %q as double", literal)
		}
		return elem.SetValueDouble(v)
	case "bool":
		v, err := strconv.ParseBool(literal)
		if err != nil {
			return errors.Wrapf(err, "parsing %q as bool", literal)
		}
		return elem.SetValueBool(v)
	case "string":
		return elem.SetValueString(literal)
	}
	return errors.Errorf("unknown type %q", typeName)
}

func newRemoveCommand(flags *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "rm FILE PATH",
		Short: "remove an element and re-serialize",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDocument(args[0], bsontree.InPlaceDisabled)
			if err != nil {
				return err
			}
			elem, err := findPath(doc.Root(), args[1])
			if err != nil {
				return err
			}
			if err := elem.Remove(); err != nil {
				return err
			}
			output := out
			if output == "" {
				output = args[0]
			}
			return writeFile(output, doc.Bytes())
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: overwrite FILE)")
	return cmd
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
