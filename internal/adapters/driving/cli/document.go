package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage applicant documents",
	Long:  `List, view or remove applicant documents in the document store.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list [applicant-id]",
	Short: "List documents, optionally for one applicant",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show a document's sections",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Remove a document and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRemove,
}

var importCmd = &cobra.Command{
	Use:   "import [file.json]",
	Short: "Import applicant documents from a JSON file",
	Long: `Imports a JSON array of documents into the document store:

  [
    {
      "id": "res-001",
      "applicant_id": "app-001",
      "type": "resume",
      "sections": {"position": "백엔드 개발자", "skills": "Go, Kafka"}
    }
  ]

Documents with an existing ID are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(importCmd)
}

// importRecord is the JSON shape of an imported document.
type importRecord struct {
	ID          string            `json:"id"`
	ApplicantID string            `json:"applicant_id"`
	Type        string            `json:"type"`
	Sections    map[string]string `json:"sections"`
}

func (r importRecord) document() (domain.Document, error) {
	doc := domain.Document{
		ID:          r.ID,
		ApplicantID: r.ApplicantID,
		Type:        domain.DocumentType(r.Type),
		Sections:    make(map[domain.Section]string, len(r.Sections)),
	}
	if doc.ID == "" {
		return doc, fmt.Errorf("document without id: %w", domain.ErrInvalidInput)
	}
	if !doc.Type.IsValid() {
		return doc, fmt.Errorf("document %s: unknown type %q: %w", doc.ID, r.Type, domain.ErrInvalidInput)
	}
	for k, v := range r.Sections {
		doc.Sections[domain.Section(k)] = v
	}
	return doc, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	ctx := cmd.Context()
	imported := 0
	for _, rec := range records {
		doc, err := rec.document()
		if err != nil {
			cmd.PrintErrf("Skipping: %v\n", err)
			continue
		}
		if err := documentStore.Save(ctx, &doc); err != nil {
			return fmt.Errorf("save %s: %w", doc.ID, err)
		}
		imported++
	}

	cmd.Printf("Imported %d of %d documents.\n", imported, len(records))
	return nil
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	var filter domain.DocumentFilter
	if len(args) > 0 {
		filter.ApplicantID = args[0]
	}

	docs, err := documentStore.Find(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %-16s %-13s %s\n", docs[i].ID, docs[i].Type, docs[i].ApplicantID)
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	doc, err := documentStore.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Applicant: %s\n", doc.ApplicantID)
	cmd.Printf("  Type:      %s\n", doc.Type)
	if !doc.CreatedAt.IsZero() {
		cmd.Printf("  Created:   %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Printf("  Updated:   %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	sections := make([]string, 0, len(doc.Sections))
	for s := range doc.Sections {
		sections = append(sections, string(s))
	}
	sort.Strings(sections)
	for _, s := range sections {
		cmd.Printf("\n  [%s]\n  %s\n", s, doc.Sections[domain.Section(s)])
	}
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if documentStore == nil || indexService == nil {
		return errors.New("document store not configured")
	}

	ctx := cmd.Context()
	if err := documentStore.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := indexService.Remove(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to remove index entries: %w", err)
	}

	cmd.Printf("Document %s removed.\n", args[0])
	return nil
}
