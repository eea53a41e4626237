// Package content holds the admin-managed lecture and note records, their
// persistence and the JSON API the admin panel drives.
package content

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/geniusclasses/geniusclasses/internal/validate"
	"github.com/geniusclasses/geniusclasses/internal/video"
	nanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrNotFound = errors.New("content: not found")
	ErrInvalid  = errors.New("content: invalid record")
)

type Category string

const (
	CategoryStd9English    Category = "Std 9 English"
	CategoryStd10English   Category = "Std 10 English"
	CategoryStd12English   Category = "Std 12 English"
	CategoryEnglishGrammar Category = "English Grammar"
)

// Categories lists lecture categories in display order.
var Categories = []Category{
	CategoryStd9English,
	CategoryStd10English,
	CategoryStd12English,
	CategoryEnglishGrammar,
}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

type Medium string

const (
	MediumEnglish  Medium = "English"
	MediumGujarati Medium = "Gujarati"
)

var Mediums = []Medium{MediumEnglish, MediumGujarati}

func (m Medium) Valid() bool {
	return m == MediumEnglish || m == MediumGujarati
}

// Standards lists the school standards notes can be filed under.
var Standards = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}

func ValidStandard(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 1 && n <= 10 && strconv.Itoa(n) == s
}

// FileType groups a note's attachment for its download icon.
type FileType string

const (
	FilePDF   FileType = "pdf"
	FilePPT   FileType = "ppt"
	FileDoc   FileType = "doc"
	FileImage FileType = "image"
	FileOther FileType = "file"
)

func FileTypeFor(fileName string) FileType {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(fileName), ".")) {
	case "pdf":
		return FilePDF
	case "ppt", "pptx", "odp":
		return FilePPT
	case "doc", "docx", "odt", "rtf", "txt":
		return FileDoc
	case "png", "jpg", "jpeg", "gif", "webp":
		return FileImage
	default:
		return FileOther
	}
}

// PlaceholderFileURL stands in for a note's download link; files are not
// uploaded anywhere.
const PlaceholderFileURL = "#"

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// IDLength matches the nine character IDs the admin panel has always used.
const IDLength = 9

func NewID() (string, error) {
	id, err := nanoid.Generate(idAlphabet, IDLength)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id, nil
}

type Lecture struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	YouTubeLink string    `json:"youtubeLink"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// Video derives the embeddable reference for the lecture's link.
func (l Lecture) Video() video.Reference {
	return video.Normalize(l.YouTubeLink)
}

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Standard  string    `json:"standard"`
	Medium    Medium    `json:"medium"`
	Subject   string    `json:"subject"`
	FileURL   string    `json:"fileUrl"`
	FileName  string    `json:"fileName"`
	FileType  FileType  `json:"fileType"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// NewLecture is the admin input for a lecture.
type NewLecture struct {
	Title       string   `json:"title"`
	YouTubeLink string   `json:"youtubeLink"`
	Category    Category `json:"category"`
}

func (in NewLecture) normalize() NewLecture {
	in.Title = strings.TrimSpace(in.Title)
	in.YouTubeLink = strings.TrimSpace(in.YouTubeLink)
	return in
}

func (in NewLecture) Validate() error {
	msg := validate.First(
		validate.Required(in.Title, "title"),
		validate.Title(in.Title),
		validate.Required(in.YouTubeLink, "video link"),
		validate.VideoLink(in.YouTubeLink),
	)
	if msg == "" && !in.Category.Valid() {
		msg = fmt.Sprintf("unknown category %q", in.Category)
	}
	if msg == "" && !video.Normalize(in.YouTubeLink).Valid() {
		msg = "video link is not a recognised YouTube URL"
	}
	if msg != "" {
		return fmt.Errorf("%w: %s", ErrInvalid, msg)
	}
	return nil
}

// NewNote is the admin input for a note.
type NewNote struct {
	Title    string `json:"title"`
	Standard string `json:"standard"`
	Medium   Medium `json:"medium"`
	Subject  string `json:"subject"`
	FileName string `json:"fileName"`
}

func (in NewNote) normalize() NewNote {
	in.Title = strings.TrimSpace(in.Title)
	in.Standard = strings.TrimSpace(in.Standard)
	in.Subject = strings.TrimSpace(in.Subject)
	in.FileName = strings.TrimSpace(in.FileName)
	return in
}

func (in NewNote) Validate() error {
	msg := validate.First(
		validate.Required(in.Title, "title"),
		validate.Title(in.Title),
		validate.Required(in.Subject, "subject"),
		validate.Subject(in.Subject),
		validate.Required(in.FileName, "file name"),
		validate.FileName(in.FileName),
	)
	if msg == "" && !ValidStandard(in.Standard) {
		msg = fmt.Sprintf("standard must be 1 to 10, got %q", in.Standard)
	}
	if msg == "" && !in.Medium.Valid() {
		msg = fmt.Sprintf("unknown medium %q", in.Medium)
	}
	if msg != "" {
		return fmt.Errorf("%w: %s", ErrInvalid, msg)
	}
	return nil
}

// BuildLecture validates in and stamps it with a fresh ID.
func BuildLecture(in NewLecture, now time.Time) (Lecture, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return Lecture{}, err
	}
	id, err := NewID()
	if err != nil {
		return Lecture{}, err
	}
	return Lecture{
		ID:          id,
		Title:       in.Title,
		YouTubeLink: in.YouTubeLink,
		Category:    in.Category,
		CreatedAt:   now.UTC(),
	}, nil
}

// BuildNote validates in and stamps it with a fresh ID.
func BuildNote(in NewNote, now time.Time) (Note, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return Note{}, err
	}
	id, err := NewID()
	if err != nil {
		return Note{}, err
	}
	return Note{
		ID:        id,
		Title:     in.Title,
		Standard:  in.Standard,
		Medium:    in.Medium,
		Subject:   in.Subject,
		FileURL:   PlaceholderFileURL,
		FileName:  in.FileName,
		FileType:  FileTypeFor(in.FileName),
		CreatedAt: now.UTC(),
	}, nil
}
