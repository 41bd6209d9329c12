package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevahub/relay/internal/files"
	"github.com/sevahub/relay/internal/tui"
)

var uploadCmd = &cobra.Command{
	Use:     "upload FILE...",
	Aliases: []string{"up"},
	Short:   "Upload files to the platform's storage endpoint",
	Long: `Validate the given files and upload each one to the relay's storage
endpoint. The returned URLs can be shared in chat.

Examples:
  sevahub upload report.pdf
  sevahub upload photo1.jpg photo2.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpload(args)
	},
}

func runUpload(paths []string) error {
	cfg := loadConfig()

	infos, err := files.Validate(paths)
	if err != nil {
		return err
	}

	tui.RenderFileTable(infos)

	httpClient := &http.Client{Timeout: 2 * time.Minute}
	for _, info := range infos {
		url, err := uploadFile(httpClient, cfg.UploadURL(), info)
		if err != nil {
			tui.PrintErrorf("%s: %v", info.Name, err)
			continue
		}
		tui.PrintSuccessf("%s -> %s%s", info.Name, cfg.BaseURL(), url)
	}
	return nil
}

// uploadFile POSTs one file as a multipart form and returns the served URL
// path from the response.
func uploadFile(client *http.Client, endpoint string, info files.FileInfo) (string, error) {
	f, err := os.Open(info.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", info.Name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("server returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("unreadable upload response: %w", err)
	}
	return result.URL, nil
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
