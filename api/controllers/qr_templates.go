package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/internal/qrtemplates"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

const (
	maxTemplateUpload = 10 << 20
	templateImageKey  = "image"
)

type templateDraft struct {
	Name     string `json:"name"`
	Position string `json:"position"`
}

// QRTemplateList serves GET /qr-templates.
func QRTemplateList(svc qrtemplates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "qr templates")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		q, err := listQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.List(r.Context(), sess, q)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "qr_templates", "/admin/list_qr_templates"), logg, w, err)
			return
		}
		writeList(w, res)
	}
}

// QRTemplateDetail serves GET /qr-templates/{templateId}.
func QRTemplateDetail(svc qrtemplates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "qr templates")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		templateID, err := pathID(r, "templateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tpl, err := svc.Get(r.Context(), sess, templateID)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "qr_template_detail", "/admin/view_qr_template"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tpl)
	}
}

// QRTemplateCreate accepts multipart/form-data with name, position and an image file.
func QRTemplateCreate(svc qrtemplates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "qr templates")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		input, closeFile, err := templateInput(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeFile()

		ack, err := svc.Create(r.Context(), sess, input)
		if err != nil {
			draft := templateDraft{Name: input.Name, Position: input.Position}
			responses.WriteError(viewContext(r.Context(), logg, "qr_template_create", "/admin/create_qr_template"), logg, w, withDraft(err, draft))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ack)
	}
}

// QRTemplateUpdate takes the same form as create; the image is optional.
func QRTemplateUpdate(svc qrtemplates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "qr templates")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		templateID, err := pathID(r, "templateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, closeFile, err := templateInput(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeFile()

		ack, err := svc.Update(r.Context(), sess, templateID, input)
		if err != nil {
			draft := templateDraft{Name: input.Name, Position: input.Position}
			responses.WriteError(viewContext(r.Context(), logg, "qr_template_edit", "/admin/update_qr_template"), logg, w, withDraft(err, draft))
			return
		}
		responses.WriteSuccess(w, ack)
	}
}

// QRTemplateDelete removes a template and answers with the refreshed list.
func QRTemplateDelete(svc qrtemplates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "qr templates")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		templateID, err := pathID(r, "templateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q, err := listQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.Delete(r.Context(), sess, templateID, q)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "qr_templates", "/admin/delete_qr_template"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

// templateInput reads the multipart form. The returned func closes the uploaded file, if any.
func templateInput(w http.ResponseWriter, r *http.Request) (qrtemplates.Input, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxTemplateUpload)
	if err := r.ParseMultipartForm(maxTemplateUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return qrtemplates.Input{}, noop, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the 10MB limit")
		}
		return qrtemplates.Input{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	input := qrtemplates.Input{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Position: strings.TrimSpace(r.FormValue("position")),
	}

	file, header, err := r.FormFile(templateImageKey)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return input, noop, nil
	case err != nil:
		return qrtemplates.Input{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	}
	input.Image = file
	input.ImageName = header.Filename
	return input, func() { _ = file.Close() }, nil
}
