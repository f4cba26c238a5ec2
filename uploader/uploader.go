package uploader

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

type gitHubUploadRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type gitHubContentResponse struct {
	SHA string `json:"sha"`
}

// UploadFile publishes a local file to a GitHub repo via the contents
// API, replacing the existing file when one is already there.
func UploadFile(token, repo, path, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	uploadURL := fmt.Sprintf("https://api.github.com/repos/%s/contents/%s", repo, path)
	body := gitHubUploadRequest{
		Message: "Update day schedule",
		Content: base64.StdEncoding.EncodeToString(data),
		SHA:     existingSHA(token, uploadURL),
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequest(http.MethodPut, uploadURL, bytes.NewReader(bodyJSON))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("error uploading to GitHub, status code: %d, response: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// existingSHA fetches the current blob SHA for the target path, or ""
// when the file does not exist yet.
func existingSHA(token, url string) string {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	var content gitHubContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return ""
	}
	return content.SHA
}
