package dri

// WithRemoveFile overrides how UploadFile deletes the temporary source file.
func WithRemoveFile(fn func(name string) error) Option {
	return func(s *service) {
		s.removeFile = fn
	}
}
