package notion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

const (
	timestampLayout = "2006年01月02日 15:04"
	dateLayout      = "2006年01月02日"
)

// PublishRequest carries one page-publication request.
type PublishRequest struct {
	Title              string
	Body               string
	SourceTitle        string
	SourceCreationTime *time.Time
	ParentPageID       string
}

// PublishResult identifies the created page.
type PublishResult struct {
	PageID string
	URL    string
}

// Publisher writes generated minutes into Notion as a new page under a
// configured parent page.
type Publisher struct {
	client *notionapi.Client
}

// NewPublisher creates a Publisher with the given integration token.
func NewPublisher(apiKey string) (*Publisher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("notion api key must be provided to create a publisher")
	}
	return &Publisher{client: notionapi.NewClient(notionapi.Token(apiKey))}, nil
}

// NormalizePageID reformats a bare 32-character page identifier into the
// canonical 8-4-4-4-12 hyphenated form. Already-hyphenated identifiers (and
// anything else) pass through verbatim, so normalization is idempotent.
func NormalizePageID(id string) string {
	if len(id) == 32 && !strings.Contains(id, "-") {
		return fmt.Sprintf("%s-%s-%s-%s-%s", id[0:8], id[8:12], id[12:16], id[16:20], id[20:32])
	}
	return id
}

// Publish writes the minutes as a new page in two phases: create the page
// with only the metadata preamble, then append the body in sequential batches
// of at most 100 blocks. The two phases are not atomic: an append failure
// leaves a partially populated page behind and still propagates as an error.
// Nothing is retried or rolled back.
func (p *Publisher) Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	if req.ParentPageID == "" {
		return nil, fmt.Errorf("publish requires a parent page id")
	}
	parentID := NormalizePageID(req.ParentPageID)
	logCtx := slog.With("parentPageId", parentID)

	pageTitle := req.Title
	if req.SourceCreationTime != nil {
		pageTitle = fmt.Sprintf("%s - %s", req.Title, req.SourceCreationTime.Format(dateLayout))
	}

	// --- 1. Create the page with the metadata preamble only ---
	logCtx.Info("Creating Notion page.", "title", pageTitle)
	page, err := p.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(parentID),
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Title: []notionapi.RichText{{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: pageTitle},
				}},
			},
		},
		Children: preambleBlocks(req.SourceTitle, time.Now()),
	})
	if err != nil {
		logCtx.Error("Notion page creation failed.", "error", err)
		return nil, fmt.Errorf("notion page create failed (parent %s): %w", parentID, err)
	}

	pageID := string(page.ID)
	logCtx = logCtx.With("pageId", pageID)
	logCtx.Info("Notion page created.", "url", page.URL)

	// --- 2. Convert the minutes body into blocks, one per line ---
	blocks := BodyToBlocks(req.Body)
	logCtx.Info("Appending body blocks.", "blockCount", len(blocks))

	// --- 3. Append in order-preserving batches of at most 100 blocks ---
	for start := 0; start < len(blocks); start += maxBlocksPerAppend {
		end := min(start+maxBlocksPerAppend, len(blocks))
		_, err := p.client.Block.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
			Children: blocks[start:end],
		})
		if err != nil {
			// The page exists and earlier batches are already on it.
			logCtx.Error("Block append failed.", "error", err, "from", start+1, "to", end)
			return nil, fmt.Errorf("notion block append failed (page %s, blocks %d-%d): %w", pageID, start+1, end, err)
		}
		logCtx.Info("Appended block batch.", "from", start+1, "to", end)
	}

	logCtx.Info("All body blocks appended.")
	return &PublishResult{PageID: pageID, URL: page.URL}, nil
}
