package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// documentSource streams a document's content from the Bot API file endpoint.
// It implements pipeline.Source; the download URL is resolved lazily so a
// stale link can never outlive the pipeline's download timeout.
type documentSource struct {
	bot    *tgbotapi.BotAPI
	fileID string
}

func (s *documentSource) Open(ctx context.Context) (io.ReadCloser, error) {
	file, err := s.bot.GetFile(tgbotapi.FileConfig{FileID: s.fileID})
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", s.fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(s.bot.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", s.fileID, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download file %s: unexpected status %s", s.fileID, resp.Status)
	}

	return resp.Body, nil
}
