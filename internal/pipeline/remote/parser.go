package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chenlehua/tara-sub000/internal/pipeline"
)

// ParserClient — клиент внешнего сервиса извлечения текста и таблиц
// из документов (POST JSON). Таймаут задаёт вызывающий через контекст.
type ParserClient struct {
	url  string
	http *http.Client
}

func NewParserClient(url string) *ParserClient {
	return &ParserClient{
		url:  url,
		http: &http.Client{},
	}
}

type parseRequest struct {
	Files []pipeline.UploadedFile `json:"files"`
}

func (p *ParserClient) Parse(ctx context.Context, files []pipeline.UploadedFile) (pipeline.ParsedContent, error) {
	body, err := json.Marshal(parseRequest{Files: files})
	if err != nil {
		return pipeline.ParsedContent{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewBuffer(body))
	if err != nil {
		return pipeline.ParsedContent{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return pipeline.ParsedContent{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pipeline.ParsedContent{}, fmt.Errorf("parser service returned %d", resp.StatusCode)
	}

	var content pipeline.ParsedContent
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return pipeline.ParsedContent{}, fmt.Errorf("decode parser response: %w", err)
	}
	return content, nil
}
