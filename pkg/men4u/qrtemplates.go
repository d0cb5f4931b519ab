package men4u

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const (
	pathListQRTemplates  = "/admin/list_qr_templates"
	pathViewQRTemplate   = "/admin/view_qr_template"
	pathCreateQRTemplate = "/admin/create_qr_template"
	pathUpdateQRTemplate = "/admin/update_qr_template"
	pathDeleteQRTemplate = "/admin/delete_qr_template"

	maxTemplateImageBytes = 5 << 20
)

// QRTemplate is a background image with the QR code overlay position.
type QRTemplate struct {
	QRTemplateID      types.ID `json:"qr_template_id"`
	Name              string   `json:"name"`
	QROverlayPosition string   `json:"qr_overlay_position"`
	Image             string   `json:"image,omitempty"`
	Filename          string   `json:"filename,omitempty"`
	CreatedOn         string   `json:"created_on,omitempty"`
}

// QRTemplateUpload is the multipart create/update form. Image is optional on update.
type QRTemplateUpload struct {
	QRTemplateID      types.ID
	UserID            types.ID
	Name              string
	QROverlayPosition string
	ImageName         string
	Image             io.Reader
}

type qrTemplateRef struct {
	QRTemplateID types.ID `json:"qr_template_id"`
	UserID       types.ID `json:"user_id"`
}

func (c *Client) ListQRTemplates(ctx context.Context, token string) ([]QRTemplate, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: pathListQRTemplates, token: token})
	if err != nil {
		return nil, err
	}
	return decodeList[QRTemplate](pathListQRTemplates, raw, "data", "templates", "qr_templates")
}

func (c *Client) ViewQRTemplate(ctx context.Context, token string, userID, templateID types.ID) (*QRTemplate, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathViewQRTemplate,
		token:  token,
		body:   qrTemplateRef{QRTemplateID: templateID, UserID: userID},
	})
	if err != nil {
		return nil, err
	}
	var tpl QRTemplate
	if err := decodeObject(pathViewQRTemplate, raw, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (c *Client) CreateQRTemplate(ctx context.Context, token string, upload QRTemplateUpload) (*Ack, error) {
	if upload.Image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template image is required")
	}
	upload.QRTemplateID = ""
	return c.sendTemplate(ctx, http.MethodPost, pathCreateQRTemplate, token, upload)
}

func (c *Client) UpdateQRTemplate(ctx context.Context, token string, upload QRTemplateUpload) (*Ack, error) {
	if upload.QRTemplateID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qr_template_id is required")
	}
	return c.sendTemplate(ctx, http.MethodPatch, pathUpdateQRTemplate, token, upload)
}

func (c *Client) DeleteQRTemplate(ctx context.Context, token string, userID, templateID types.ID) (*Ack, error) {
	var ack Ack
	err := c.call(ctx, request{
		method: http.MethodDelete,
		path:   pathDeleteQRTemplate,
		token:  token,
		body:   qrTemplateRef{QRTemplateID: templateID, UserID: userID},
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) sendTemplate(ctx context.Context, method, path, token string, upload QRTemplateUpload) (*Ack, error) {
	body, contentType, err := encodeTemplateForm(upload)
	if err != nil {
		return nil, err
	}
	var ack Ack
	err = c.call(ctx, request{
		method:      method,
		path:        path,
		token:       token,
		rawBody:     body,
		contentType: contentType,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

func encodeTemplateForm(upload QRTemplateUpload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	fields := [][2]string{
		{"qr_template_id", upload.QRTemplateID.String()},
		{"user_id", upload.UserID.String()},
		{"name", strings.TrimSpace(upload.Name)},
		{"qr_overlay_position", upload.QROverlayPosition},
	}
	for _, field := range fields {
		if field[1] == "" {
			continue
		}
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode template form")
		}
	}

	if upload.Image != nil {
		name := strings.TrimSpace(upload.ImageName)
		if name == "" {
			name = "template.jpg"
		}
		part, err := writer.CreateFormFile("image", name)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode template image")
		}
		n, err := io.Copy(part, io.LimitReader(upload.Image, maxTemplateImageBytes+1))
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read template image")
		}
		if n > maxTemplateImageBytes {
			return nil, "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("template image exceeds %d bytes", maxTemplateImageBytes))
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode template form")
	}
	return buf, writer.FormDataContentType(), nil
}
