package dri

import (
	"context"
	"mime"
	"path"
	"strings"
)

// ApproveRecord publishes a record to the archive: it creates an object under
// namespace, attaches the Dublin Core rendering as the DC datastream and, when
// the record has a file, the file as the MEDIA datastream. The archive's
// object id is returned.
//
// The steps are not transactional. The object id and a partial status are
// written to the record as soon as the object exists, so a failure later on
// leaves a record pointing at an incomplete object rather than an orphan
// nobody knows about.
func (s *service) ApproveRecord(ctx context.Context, id, namespace string) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveNotConfigured
	}
	if strings.TrimSpace(namespace) == "" {
		return "", ErrInvalidNamespace
	}

	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return "", err
	}
	if record.PublicationStatus == PublicationStatusPublished {
		return "", ErrAlreadyPublished
	}

	logger := s.logger.With("id", record.ID, "namespace", namespace)

	pid, err := s.archive.CreateObject(ctx, namespace, record.Properties.Title())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create archival object", "error", err)
		return "", &PublicationError{RecordID: record.ID, Step: StepCreateObject, Err: err}
	}
	logger = logger.With("fedora_id", pid)

	partial := PublicationStatusPartial
	if err := s.repository.UpdateRecord(ctx, record.ID, RecordUpdate{
		FedoraID:          &pid,
		PublicationStatus: &partial,
		DateModified:      s.now().UTC(),
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to record archival object", "error", err)
		return "", &PublicationError{RecordID: record.ID, FedoraID: pid, Step: StepRecordObject, Err: err}
	}
	record.FedoraID = pid

	dc, err := s.converter.ToDC(record)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to convert record", "error", err)
		return "", &PublicationError{RecordID: record.ID, FedoraID: pid, Step: StepAttachMetadata, Err: err}
	}
	if err := s.archive.AddMetadataDatastream(ctx, pid, DatastreamDC, []byte(dc)); err != nil {
		logger.ErrorContext(ctx, "Failed to attach metadata datastream", "error", err)
		return "", &PublicationError{RecordID: record.ID, FedoraID: pid, Step: StepAttachMetadata, Err: err}
	}

	if record.FileLocation != "" {
		if err := s.attachMedia(ctx, pid, record.FileLocation); err != nil {
			logger.ErrorContext(ctx, "Failed to attach media datastream", "file", record.FileLocation, "error", err)
			return "", &PublicationError{RecordID: record.ID, FedoraID: pid, Step: StepAttachMedia, Err: err}
		}
	}

	published := PublicationStatusPublished
	if err := s.repository.UpdateRecord(ctx, record.ID, RecordUpdate{
		PublicationStatus: &published,
		DateModified:      s.now().UTC(),
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to mark record published", "error", err)
		return "", &PublicationError{RecordID: record.ID, FedoraID: pid, Step: StepComplete, Err: err}
	}

	logger.InfoContext(ctx, "Record approved")
	s.fire(ctx, "published", func() error { return s.eventSink.RecordPublished(ctx, record.ID, pid) })
	return pid, nil
}

func (s *service) attachMedia(ctx context.Context, pid, fileLocation string) error {
	if s.blobStore == nil {
		return ErrBlobStoreNotConfigured
	}

	media := MediaFile{
		Name:     path.Base(fileLocation),
		MimeType: mime.TypeByExtension(path.Ext(fileLocation)),
	}
	if meta, err := s.blobStore.GetObjectMeta(ctx, fileLocation); err == nil {
		media.Size = meta.Size
		if media.MimeType == "" {
			media.MimeType = meta.ContentType
		}
	}
	if media.MimeType == "" {
		media.MimeType = "application/octet-stream"
	}

	reader, err := s.blobStore.Download(ctx, fileLocation)
	if err != nil {
		return err
	}
	defer reader.Close()
	media.Reader = reader

	return s.archive.AddMediaDatastream(ctx, pid, DatastreamMedia, media)
}
