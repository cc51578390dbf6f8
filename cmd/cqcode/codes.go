package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memohai/cqcode/internal/cqcode"
)

type codeView struct {
	Type   string         `json:"type"`
	Keys   []string       `json:"keys"`
	Fields map[string]any `json:"fields"`
}

type segmentView struct {
	Kind string    `json:"kind"`
	Text string    `json:"text,omitempty"`
	Code *codeView `json:"code,omitempty"`
}

func toCodeView(code *cqcode.Code) *codeView {
	keys := code.Keys()
	return &codeView{
		Type:   code.Type,
		Keys:   keys,
		Fields: code.Pick(keys...),
	}
}

// inputText joins args, or reads stdin when there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(raw), "\r\n"), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [text]",
		Short: "Print every inline code found in the text as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			views := []*codeView{}
			for _, code := range cqcode.Parse(text) {
				views = append(views, toCodeView(code))
			}
			return writeJSON(cmd.OutOrStdout(), views)
		},
	}
}

func newSegmentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "segments [text]",
		Short: "Split the text into plain text and code segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			views := []segmentView{}
			for _, seg := range cqcode.Segments(text) {
				view := segmentView{Kind: string(seg.Kind), Text: seg.Text}
				if seg.Code != nil {
					view.Code = toCodeView(seg.Code)
				}
				views = append(views, view)
			}
			return writeJSON(cmd.OutOrStdout(), views)
		},
	}
}

func newEscapeCommand() *cobra.Command {
	var insideCode bool
	cmd := &cobra.Command{
		Use:   "escape [text]",
		Short: "Escape text for embedding in a message",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cqcode.Escape(text, insideCode))
			return err
		},
	}
	cmd.Flags().BoolVar(&insideCode, "field", false, "escape for use as a field key or value")
	return cmd
}

func newUnescapeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unescape [text]",
		Short: "Reverse escaping",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cqcode.Unescape(text))
			return err
		},
	}
}

func newBuildCommand() *cobra.Command {
	build := &cobra.Command{
		Use:   "build",
		Short: "Build a ready-to-embed inline code",
	}
	emit := func(cmd *cobra.Command, s string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
		return err
	}

	var imageVariant string
	image := &cobra.Command{
		Use:  "image <file>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, cqcode.Image(args[0], imageVariant))
		},
	}
	image.Flags().StringVar(&imageVariant, "variant", "", "image variant, e.g. flash")

	var b64Variant string
	b64 := &cobra.Command{
		Use:   "base64-image <path>",
		Short: "Embed a local image file inline as base64",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			return emit(cmd, cqcode.Base64Image(base64.StdEncoding.EncodeToString(raw), b64Variant))
		},
	}
	b64.Flags().StringVar(&b64Variant, "variant", "", "image variant, e.g. flash")

	var cover string
	video := &cobra.Command{
		Use:  "video <file>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, cqcode.Video(args[0], cover))
		},
	}
	video.Flags().StringVar(&cover, "cover", "", "cover image file")

	var content, shareImage string
	share := &cobra.Command{
		Use:  "share <url> <title>",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, cqcode.Share(args[0], args[1], content, shareImage))
		},
	}
	share.Flags().StringVar(&content, "content", "", "description text")
	share.Flags().StringVar(&shareImage, "image", "", "preview image url")

	at := &cobra.Command{
		Use:  "at <user-id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, cqcode.Mention(args[0]))
		},
	}
	atAll := &cobra.Command{
		Use:  "at-all",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return emit(cmd, cqcode.MentionAll())
		},
	}
	reply := &cobra.Command{
		Use:  "reply <message-id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, cqcode.Reply(args[0]))
		},
	}
	record := &cobra.Command{
		Use:  "record <file>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, cqcode.Voice(args[0]))
		},
	}

	build.AddCommand(image, b64, video, share, at, atAll, reply, record)
	return build
}
