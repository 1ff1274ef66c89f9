package intake

import (
	"context"
	"encoding/base64"

	"github.com/spherical/text-extractor/internal/domain"
)

// EncodedImage is a plain image ready for a generation request.
type EncodedImage struct {
	Payload domain.Payload
	Preview string // data URL
}

// ImageEncoder turns an uploaded image into a payload and a preview.
type ImageEncoder struct {
	msgs *domain.Messages
}

// NewImageEncoder creates an image encoder.
func NewImageEncoder(msgs *domain.Messages) *ImageEncoder {
	return &ImageEncoder{msgs: msgs}
}

// Encode reads the image fully. The payload is the bare base64 content and the
// preview is the same content wrapped in a data URL.
func (e *ImageEncoder) Encode(ctx context.Context, doc domain.UploadedDocument) (*EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := doc.ReadAll()
	if err != nil {
		return nil, domain.ReadError(e.msgs.Get(domain.MsgReadFailed), err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return &EncodedImage{
		Payload: domain.Payload{MimeType: doc.MimeType, Data: encoded},
		Preview: DataURL(doc.MimeType, encoded),
	}, nil
}

// DataURL wraps base64 content in a data URL envelope.
func DataURL(mimeType, b64 string) string {
	return "data:" + mimeType + ";base64," + b64
}
