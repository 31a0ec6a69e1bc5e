package main

import (
	"fmt"

	"github.com/Nemutagk/thinodium/driver/mongodb"
	"github.com/Nemutagk/thinodium/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
)

type modelLookup func(name string) (models.ModelConfig, error)

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print one document by primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withModel(cmd.Context(), args[0], func(m *mongodb.Model) error {
				doc, err := m.RawGet(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if doc == nil {
					return fmt.Errorf("%s: no document with %s %s", args[0], m.PK(), args[1])
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), formatValue(doc))
				return err
			})
		},
	}
}

func newAllCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all <collection>",
		Short: "Print every document of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withModel(cmd.Context(), args[0], func(m *mongodb.Model) error {
				docs, err := m.RawGetAll(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), formatDocuments(docs))
				return err
			})
		},
	}
}

func newInsertCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <collection> <document>",
		Short: "Insert a document given as extended JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := parseDocument(args[1])
			if err != nil {
				return err
			}
			return opts.withModel(cmd.Context(), args[0], func(m *mongodb.Model) error {
				out, err := m.RawInsert(cmd.Context(), doc)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), formatValue(out))
				return err
			})
		},
	}
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <collection> <id> <changes>",
		Short: "Set the given fields (extended JSON) on a document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseDocument(args[2])
			if err != nil {
				return err
			}
			return opts.withModel(cmd.Context(), args[0], func(m *mongodb.Model) error {
				return m.RawUpdate(cmd.Context(), args[1], changes)
			})
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <collection> <id>",
		Short: "Delete a document by primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withModel(cmd.Context(), args[0], func(m *mongodb.Model) error {
				return m.RawRemove(cmd.Context(), args[1])
			})
		},
	}
}

// parseDocument acepta extended JSON relajado o canónico.
func parseDocument(raw string) (models.Document, error) {
	var doc bson.M
	if err := bson.UnmarshalExtJSON([]byte(raw), false, &doc); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return models.Document(doc), nil
}
