package pdfops

import (
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
)

// Encrypt writes an AES-256 protected copy of doc.
func (t *Toolkit) Encrypt(doc batch.Document, outFile string, p batch.EncryptParams) error {
	d, err := t.local(doc)
	if err != nil {
		return err
	}

	ownerPW := p.OwnerPassword
	if ownerPW == "" {
		ownerPW = p.UserPassword
	}

	conf := model.NewAESConfiguration(p.UserPassword, ownerPW, 256)
	conf.ValidationMode = model.ValidationRelaxed
	conf.Permissions = permissionFlags(p.Permissions)
	return api.EncryptFile(d.path, outFile, conf)
}

// Decrypt writes a cleartext copy of an encrypted doc.
func (t *Toolkit) Decrypt(doc batch.Document, outFile string, password string) error {
	d, err := t.local(doc)
	if err != nil {
		return err
	}

	conf := model.NewAESConfiguration(password, password, 256)
	conf.ValidationMode = model.ValidationRelaxed
	return api.DecryptFile(d.path, outFile, conf)
}

// permissionFlags maps the caller-facing permission toggles onto pdfcpu's
// coarse permission model: full access when any edit right is granted,
// print-only when only printing is, no rights otherwise.
func permissionFlags(p batch.Permissions) model.PermissionFlags {
	switch {
	case p.AllowModify || p.AllowCopy || p.AllowAnnotate:
		return model.PermissionsAll
	case p.AllowPrint:
		return model.PermissionsPrint
	default:
		return model.PermissionsNone
	}
}
