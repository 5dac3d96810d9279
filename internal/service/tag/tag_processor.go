package tag

//go:generate $MOCKGEN -source=tag_processor.go -destination=mocks/tag_processor_mock.go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/oshokin/id3v2/v2"

	"github.com/ytget/ytdl-helper/internal/constants"
	"github.com/ytget/ytdl-helper/internal/logger"
)

// Processor defines the interface for writing metadata tags to audio files.
type Processor interface {
	WriteTags(ctx context.Context, req *WriteTagsRequest) error
}

// WriteTagsRequest contains parameters for writing metadata to audio files.
type WriteTagsRequest struct {
	// TrackPath is the file path of the audio file.
	TrackPath string
	// Title is the media title.
	Title string
	// Artist is the uploader or channel name.
	Artist string
	// Comment is a free-form comment, typically the source URL.
	Comment string
	// ThumbnailURL points at the cover image to embed. Empty skips embedding.
	ThumbnailURL string
}

// ProcessorImpl provides the default implementation of Processor.
type ProcessorImpl struct {
	httpClient *http.Client
}

// imageMetadata contains image data and its MIME type.
type imageMetadata struct {
	// data contains the raw image bytes.
	data []byte
	// mimeType specifies the image format (e.g., "image/jpeg").
	mimeType string
}

// extractFLACCommentResult contains the result of extracting FLAC comment metadata.
type extractFLACCommentResult struct {
	// Comment is the FLAC Vorbis comment metadata block.
	Comment *flacvorbis.MetaDataBlockVorbisComment
	// Index is the index of the comment block in the FLAC file metadata (-1 if not found).
	Index int
}

// Static error definitions for better error handling.
var (
	// ErrEmptyTrackPath indicates that the audio file path is empty.
	ErrEmptyTrackPath = errors.New("track path cannot be empty")
	// ErrUnsupportedExtension indicates the file format does not support tagging.
	ErrUnsupportedExtension = errors.New("file format does not support tagging")
)

// NewProcessor creates a new Processor instance. The HTTP client is used
// to fetch the cover image; nil disables cover embedding.
func NewProcessor(httpClient *http.Client) Processor {
	return &ProcessorImpl{httpClient: httpClient}
}

// WriteTags writes metadata to the audio file based on the provided request.
// Only MP3 and FLAC containers are supported; anything else returns
// ErrUnsupportedExtension so callers can downgrade it to a warning.
func (tp *ProcessorImpl) WriteTags(ctx context.Context, req *WriteTagsRequest) error {
	if req.TrackPath == "" {
		return ErrEmptyTrackPath
	}

	image := tp.fetchCoverImage(ctx, req.ThumbnailURL)

	switch strings.ToLower(filepath.Ext(req.TrackPath)) {
	case constants.ExtensionFLAC:
		return tp.writeFLACTags(ctx, req, image)
	case constants.ExtensionMP3:
		return tp.writeMP3Tags(req, image)
	default:
		return fmt.Errorf("%w: '%s'", ErrUnsupportedExtension, filepath.Ext(req.TrackPath))
	}
}

// fetchCoverImage downloads the cover image. Any failure is logged and
// swallowed: a missing cover must not block tagging.
func (tp *ProcessorImpl) fetchCoverImage(ctx context.Context, thumbnailURL string) *imageMetadata {
	if thumbnailURL == "" || tp.httpClient == nil {
		return nil
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbnailURL, http.NoBody)
	if err != nil {
		logger.Debugf(ctx, "Failed to build cover request: %v", err)

		return nil
	}

	resp, err := tp.httpClient.Do(httpRequest)
	if err != nil {
		logger.Debugf(ctx, "Failed to fetch cover: %v", err)

		return nil
	}

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if resp.StatusCode != http.StatusOK {
		logger.Debugf(ctx, "Cover fetch returned status %d", resp.StatusCode)

		return nil
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Debugf(ctx, "Failed to read cover body: %v", err)

		return nil
	}

	return &imageMetadata{
		data:     imageData,
		mimeType: resp.Header.Get("Content-Type"),
	}
}

func (tp *ProcessorImpl) writeFLACTags(ctx context.Context, req *WriteTagsRequest, image *imageMetadata) error {
	// Parse the FLAC file.
	f, err := flac.ParseFile(filepath.Clean(req.TrackPath))
	if err != nil {
		return err
	}

	// Extract existing FLAC comments (metadata) from the file.
	commentResult, err := tp.extractFLACComment(req.TrackPath)
	if err != nil {
		return err
	}

	tag := commentResult.Comment

	// If no existing comments are found, create a new metadata block.
	if tag == nil {
		tag = flacvorbis.New()
	}

	err = tp.addFLACTags(tag, req)
	if err != nil {
		return err
	}

	// Marshal the updated metadata and update the FLAC file's metadata blocks.
	tagMeta := tag.Marshal()
	if commentResult.Index >= 0 {
		f.Meta[commentResult.Index] = &tagMeta
	} else {
		f.Meta = append(f.Meta, &tagMeta)
	}

	// Embed the cover art into the FLAC file if provided.
	tp.embedFLACCover(ctx, f, image)

	return f.Save(req.TrackPath)
}

func (tp *ProcessorImpl) extractFLACComment(filename string) (*extractFLACCommentResult, error) {
	f, err := flac.ParseFile(filepath.Clean(filename))
	if err != nil {
		return nil, err
	}

	// Iterate through the metadata blocks to find the Vorbis comment block.
	for idx, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}

		var comment *flacvorbis.MetaDataBlockVorbisComment

		comment, err = flacvorbis.ParseFromMetaDataBlock(*meta)
		if err == nil {
			return &extractFLACCommentResult{
				Comment: comment,
				Index:   idx,
			}, nil
		}
	}

	// Return nil comment if no Vorbis comment block is found.
	return &extractFLACCommentResult{
		Comment: nil,
		Index:   -1,
	}, nil
}

func (tp *ProcessorImpl) addFLACTags(tag *flacvorbis.MetaDataBlockVorbisComment, req *WriteTagsRequest) error {
	flacTags := map[string]string{
		"TITLE":       req.Title,
		"ARTIST":      req.Artist,
		"DESCRIPTION": req.Comment,
	}

	// Add each tag to the Vorbis comment block.
	for k, v := range flacTags {
		if v == "" {
			continue
		}

		err := tag.Add(k, v)
		if err != nil {
			return err
		}
	}

	return nil
}

func (tp *ProcessorImpl) embedFLACCover(ctx context.Context, f *flac.File, image *imageMetadata) {
	if image == nil {
		return
	}

	// Create a new FLAC picture block from the image data.
	picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "", image.data, image.mimeType)
	if err != nil {
		logger.Errorf(ctx, "Failed to embed image to FLAC: %v", err)

		return
	}

	// Add the picture block to the FLAC file's metadata.
	pictureMeta := picture.Marshal()
	f.Meta = append(f.Meta, &pictureMeta)
}

func (tp *ProcessorImpl) writeMP3Tags(req *WriteTagsRequest, image *imageMetadata) error {
	// Open the MP3 file for writing metadata.
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(req.TrackPath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close()

	tp.addMP3Tags(tag, req)

	// Embed the cover art into the MP3 file if provided.
	if image != nil {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    image.mimeType,
			PictureType: id3v2.PTFrontCover,
			Picture:     image.data,
		})
	}

	return tag.Save()
}

func (tp *ProcessorImpl) addMP3Tags(tag *id3v2.Tag, req *WriteTagsRequest) {
	// Set default encoding for the tags.
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if req.Title != "" {
		tag.SetTitle(req.Title)
	}

	if req.Artist != "" {
		tag.SetArtist(req.Artist)
	}

	if req.Comment == "" {
		return
	}

	//nolint:exhaustruct // ContentDescriptor not available in source data.
	tag.AddCommentFrame(id3v2.CommentFrame{
		Encoding: id3v2.EncodingUTF8,
		// Field is required, so we just use lingua franca.
		Language: id3v2.EnglishISO6392Code,
		Text:     req.Comment,
	})
}
