package model

// ExportRequest starts one export job: one file, one target, optional profile.
type ExportRequest struct {
	FilePath string       `json:"filePath" validate:"required"`
	Target   ExportTarget `json:"target" validate:"required,oneof=git ftp netlify vercel"`
	Profile  *string      `json:"profile,omitempty"`
}

// CredentialRequest identifies one secret slot in the host keychain.
type CredentialRequest struct {
	FilePath string         `json:"filePath" validate:"required"`
	Target   ExportTarget   `json:"target" validate:"required,oneof=git ftp netlify vercel"`
	Profile  *string        `json:"profile,omitempty"`
	Kind     CredentialKind `json:"kind" validate:"required,oneof=password token"`
}

// CredentialSetRequest writes a secret. The surface is write-only; secrets
// are never returned to callers.
type CredentialSetRequest struct {
	CredentialRequest
	Value string `json:"value" validate:"required"`
}
