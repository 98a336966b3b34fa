package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storybook-ai/backend/internal/credentials"
)

// Prediction statuses reported by Replicate
const (
	predictionSucceeded = "succeeded"
	predictionFailed    = "failed"
	predictionCanceled  = "canceled"
)

// Replicate generates illustrations with a Replicate-hosted image model
type Replicate struct {
	httpClient *http.Client
	settings   Settings
	creds      credentials.Credentials
}

// NewReplicate creates a client authenticated with creds.ReplicateToken
func NewReplicate(settings Settings, httpClient *http.Client, creds credentials.Credentials) *Replicate {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = time.Second
	}
	return &Replicate{httpClient: httpClient, settings: settings, creds: creds}
}

type predictionInput struct {
	Prompt           string `json:"prompt"`
	PromptUpsampling bool   `json:"prompt_upsampling"`
	AspectRatio      string `json:"aspect_ratio,omitempty"`
	OutputFormat     string `json:"output_format,omitempty"`
	Seed             int    `json:"seed"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// outputURL returns the first image URL of a finished prediction
func (p *prediction) outputURL() (string, error) {
	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil && single != "" {
		return single, nil
	}
	var many []string
	if err := json.Unmarshal(p.Output, &many); err == nil && len(many) > 0 && many[0] != "" {
		return many[0], nil
	}
	return "", errors.New("prediction returned no image")
}

// GenerateImage implements ImageGenerator. The style suffix is appended
// to the prompt before submission.
func (r *Replicate) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	var img *Image
	err := observe(ctx, NameReplicate, "image", func(ctx context.Context) error {
		pred, err := r.createPrediction(ctx, req)
		if err != nil {
			return err
		}
		if pred, err = r.wait(ctx, pred); err != nil {
			return err
		}
		link, err := pred.outputURL()
		if err != nil {
			return newError(NameReplicate, "image", 0, r.creds, err)
		}
		img, err = r.download(ctx, link, req.OutputFormat)
		return err
	})
	return img, err
}

func (r *Replicate) createPrediction(ctx context.Context, req ImageRequest) (*prediction, error) {
	body, err := json.Marshal(map[string]predictionInput{
		"input": {
			Prompt:       req.Prompt + r.settings.StyleSuffix,
			AspectRatio:  req.AspectRatio,
			OutputFormat: req.OutputFormat,
			Seed:         req.Seed,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling prediction request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s/predictions",
		strings.TrimRight(r.settings.ReplicateBaseURL, "/"), r.settings.ImageModel)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newError(NameReplicate, "image", 0, r.creds, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Prefer", "wait")

	return r.doPrediction(httpReq)
}

// wait polls until the prediction reaches a terminal status
func (r *Replicate) wait(ctx context.Context, pred *prediction) (*prediction, error) {
	ticker := time.NewTicker(r.settings.PollInterval)
	defer ticker.Stop()

	for {
		switch pred.Status {
		case predictionSucceeded:
			return pred, nil
		case predictionFailed, predictionCanceled:
			msg := fmt.Sprintf("prediction %s %s", pred.ID, pred.Status)
			if pred.Error != nil {
				msg = fmt.Sprintf("%s: %v", msg, pred.Error)
			}
			return nil, newError(NameReplicate, "image", 0, r.creds, errors.New(msg))
		}
		if pred.URLs.Get == "" {
			return nil, newError(NameReplicate, "image", 0, r.creds, fmt.Errorf("prediction %s has no status url", pred.ID))
		}

		select {
		case <-ctx.Done():
			return nil, newError(NameReplicate, "image", 0, r.creds, ctx.Err())
		case <-ticker.C:
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pred.URLs.Get, nil)
		if err != nil {
			return nil, newError(NameReplicate, "image", 0, r.creds, err)
		}
		if pred, err = r.doPrediction(httpReq); err != nil {
			return nil, err
		}
	}
}

func (r *Replicate) doPrediction(req *http.Request) (*prediction, error) {
	req.Header.Set("Authorization", "Bearer "+r.creds.ReplicateToken)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, newError(NameReplicate, "image", 0, r.creds, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(NameReplicate, "image", 0, r.creds, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(NameReplicate, "image", resp.StatusCode, bodyBytes, r.creds)
	}

	var pred prediction
	if err := json.Unmarshal(bodyBytes, &pred); err != nil {
		return nil, newError(NameReplicate, "image", 0, r.creds, fmt.Errorf("decoding prediction: %w", err))
	}
	return &pred, nil
}

// download fetches the generated file. Output URLs are pre-signed, so no
// credentials are sent.
func (r *Replicate) download(ctx context.Context, link, format string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, newError(NameReplicate, "download", 0, r.creds, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, newError(NameReplicate, "download", 0, r.creds, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, statusError(NameReplicate, "download", resp.StatusCode, bodyBytes, r.creds)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(NameReplicate, "download", 0, r.creds, err)
	}

	contentType := ContentTypeFor(format)
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		contentType = ct
	}
	return &Image{Data: data, ContentType: contentType}, nil
}

// ContentTypeFor maps an output format to its media type
func ContentTypeFor(format string) string {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
