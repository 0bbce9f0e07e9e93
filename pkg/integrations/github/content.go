package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations"
)

var rawHeaders = map[string]string{"Accept": "application/vnd.github.raw"}

// ContentItem is one entry of a directory listing.
type ContentItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // file, dir, symlink or submodule
	Size int    `json:"size"`
}

// IsDir reports whether the item is a directory.
func (i ContentItem) IsDir() bool { return i.Type == "dir" }

// ListDirectory lists files and directories at path in a repository's
// default branch. An empty path lists the root.
//
// Returns [integrations.ErrNotFound] if the repository or path doesn't exist,
// and an INVALID_PATH error if path names a file.
func (c *ContentClient) ListDirectory(ctx context.Context, owner, repo, path string) ([]ContentItem, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}
	path = strings.Trim(path, "/")
	if path != "" {
		if err := errs.ValidatePath(path); err != nil {
			return nil, err
		}
	}

	var items []ContentItem
	err := c.Cached(ctx, "dir:"+owner+"/"+repo+"/"+path, false, &items, func() error {
		data, err := c.GetBytes(ctx, c.contentsURL(owner, repo, path), nil)
		if err != nil {
			return notFound(err, owner, repo, path)
		}
		if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
			return errs.New(errs.ErrCodeInvalidPath, "%s/%s: %s is not a directory", owner, repo, path)
		}
		if err := json.Unmarshal(data, &items); err != nil {
			return errs.Wrap(errs.ErrCodeParse, err, "decode listing of %s/%s/%s", owner, repo, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FetchFile retrieves the raw content of a file from a repository's default
// branch. Returns [integrations.ErrNotFound] if the file doesn't exist.
func (c *ContentClient) FetchFile(ctx context.Context, owner, repo, path string) (string, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", err
	}
	path = strings.Trim(path, "/")
	if err := errs.ValidatePath(path); err != nil {
		return "", err
	}
	return c.raw(ctx, "file:"+owner+"/"+repo+"/"+path, c.contentsURL(owner, repo, path), owner, repo, path)
}

// GetReadme retrieves the repository's preferred README, whatever its file
// name. Returns [integrations.ErrNotFound] if the repository has none.
func (c *ContentClient) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", err
	}
	u := fmt.Sprintf("%s/repos/%s/%s/readme", c.baseURL, owner, repo)
	return c.raw(ctx, "readme:"+owner+"/"+repo, u, owner, repo, "README")
}

func (c *ContentClient) raw(ctx context.Context, key, u, owner, repo, path string) (string, error) {
	var content string
	err := c.Cached(ctx, key, false, &content, func() error {
		data, err := c.GetBytes(ctx, u, rawHeaders)
		if err != nil {
			return notFound(err, owner, repo, path)
		}
		content = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *ContentClient) contentsURL(owner, repo, path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, strings.Join(segs, "/"))
}

func notFound(err error, owner, repo, path string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return fmt.Errorf("%w: github %s/%s/%s", err, owner, repo, path)
	}
	return err
}
