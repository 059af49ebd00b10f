package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/knowledgeengine/internal/ingest"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

func newIngestCmd() *cobra.Command {
	var async bool

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Ingest a text/markdown document or media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()

			doc, err := buildDocument(args[0])
			if err != nil {
				return err
			}

			mode := ingest.ModeSync
			if async {
				mode = ingest.ModeAsync
			}
			id, err := a.Core.Ingest(cmd.Context(), doc, mode)
			if err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "document_id=%d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&async, "async", false, "enqueue media documents for later processing instead of analyzing inline")
	return cmd
}

// buildDocument loads path and classifies its media type by extension:
// spec.md's scope is "resolve the splitter strategy from document.media_type",
// not file-type sniffing, so the CLI demo does the simplest thing that
// lets every path reach a real mediaType.
func buildDocument(path string) (*model.Document, error) {
	mediaType := classifyExtension(path)

	doc := &model.Document{
		Source:    path,
		MediaType: mediaType,
		Title:     filepath.Base(path),
		Metadata:  map[string]string{"source": path},
	}

	if mediaType == model.MediaTypeText {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		doc.Content = string(content)
	} else {
		doc.MediaPath = path
	}
	return doc, nil
}

func classifyExtension(path string) model.MediaType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return model.MediaTypeImage
	case ".mp3", ".wav", ".flac", ".m4a":
		return model.MediaTypeAudio
	case ".mp4", ".mov", ".webm", ".mkv":
		return model.MediaTypeVideo
	default:
		return model.MediaTypeText
	}
}
