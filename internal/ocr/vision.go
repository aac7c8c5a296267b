package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionExtractor implements TextExtractor on the Google Cloud Vision API.
type VisionExtractor struct {
	client        *vision.ImageAnnotatorClient
	cfg           Config
	maxImageBytes int
	logger        *slog.Logger
}

// NewVisionExtractor dials the Vision API using the credentials in cfg,
// falling back to application default credentials when neither a file nor
// inline JSON is configured.
func NewVisionExtractor(ctx context.Context, cfg Config, logger *slog.Logger) (*VisionExtractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LanguageHint == "" {
		cfg.LanguageHint = "es"
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
		}
		return nil, fmt.Errorf("creating vision client: %w", err)
	}
	return &VisionExtractor{
		client:        client,
		cfg:           cfg,
		maxImageBytes: imageSizeLimit(cfg.MaxImageSizeMB),
		logger:        logger,
	}, nil
}

// Extract runs plain text detection first and retries with document text
// detection when the image yields nothing, which handles dense or skewed
// invoice scans better.
func (v *VisionExtractor) Extract(ctx context.Context, image []byte) (Result, error) {
	start := time.Now()
	if len(image) == 0 {
		return Result{}, ErrEmptyImage
	}
	if len(image) > v.maxImageBytes {
		return Result{}, fmt.Errorf("%w: %d bytes over %d", ErrImageTooLarge, len(image), v.maxImageBytes)
	}

	res, err := v.annotate(ctx, image, visionpb.Feature_TEXT_DETECTION, "text")
	if err == nil && strings.TrimSpace(res.Text) == "" {
		err = ErrNoText
	}
	if err != nil {
		v.logger.Debug("ocr.retry", "method", "document-text", "reason", err)
		res, err = v.annotate(ctx, image, visionpb.Feature_DOCUMENT_TEXT_DETECTION, "document-text")
	}
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return Result{}, ErrNoText
	}

	res.Duration = time.Since(start)
	v.logger.Info("ocr.extracted",
		"method", res.Method,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (v *VisionExtractor) annotate(ctx context.Context, image []byte, feature visionpb.Feature_Type, method string) (Result, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image:    &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{{Type: feature}},
				ImageContext: &visionpb.ImageContext{
					LanguageHints: []string{v.cfg.LanguageHint},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("vision api call failed: %w", err)
	}
	if len(resp.Responses) == 0 {
		return Result{}, fmt.Errorf("vision api returned no responses")
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return Result{}, fmt.Errorf("vision api error: %s", annotated.Error.Message)
	}

	var text string
	if annotated.FullTextAnnotation != nil {
		text = annotated.FullTextAnnotation.Text
	} else if len(annotated.TextAnnotations) > 0 {
		// The first annotation aggregates the whole detected block.
		text = annotated.TextAnnotations[0].Description
	}

	return Result{
		Text:       text,
		Confidence: wordConfidence(annotated.FullTextAnnotation),
		Method:     method,
	}, nil
}

// wordConfidence averages the per-word scores of a full text annotation.
func wordConfidence(fta *visionpb.TextAnnotation) *float32 {
	if fta == nil {
		return nil
	}
	var sum float32
	var count int
	for _, page := range fta.Pages {
		for _, block := range page.Blocks {
			for _, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					if word.Confidence > 0 {
						sum += word.Confidence
						count++
					}
				}
			}
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float32(count)
	return &avg
}

func (v *VisionExtractor) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
