package xmldoc

import (
	"encoding/xml"
	stderrors "errors"
	iofs "io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/sitevault/internal/version"
	"github.com/arthur-debert/sitevault/pkg/errors"
	"github.com/arthur-debert/sitevault/pkg/filesystem"
	"github.com/arthur-debert/sitevault/pkg/logging"
)

// BackupSuffix is appended to the file path to form the backup path. The
// backup exists only transiently during a save, or as a last-resort
// recovery source during a load.
const BackupSuffix = "~"

// Notifier surfaces save errors to an external presentation channel (a
// dialog, a status line). The default notifier logs the error.
type Notifier func(err error)

// File binds one XML document to one file path.
type File struct {
	fs         filesystem.FS
	path       string
	rootName   string
	appVersion string
	notify     Notifier
	logger     zerolog.Logger

	doc     *etree.Document
	root    *etree.Element
	modTime time.Time
}

// New binds path and the expected root element name. The root name is how
// the store recognizes its own documents versus foreign XML files. The
// application version is explicit here so stamping and future-version
// detection do not depend on ambient state.
func New(fsys filesystem.FS, path, rootName, appVersion string) *File {
	f := &File{
		fs:         fsys,
		path:       path,
		rootName:   rootName,
		appVersion: appVersion,
		logger:     logging.GetLogger("xmldoc"),
	}
	f.notify = func(err error) {
		f.logger.Error().Err(err).Str("path", f.path).Msg("Save failed")
	}
	return f
}

// SetNotifier replaces the error presentation channel used by Save.
func (f *File) SetNotifier(n Notifier) {
	if n != nil {
		f.notify = n
	}
}

// Path returns the bound file path.
func (f *File) Path() string {
	return f.path
}

// Root returns the live root element, or nil when the file is closed.
func (f *File) Root() *etree.Element {
	return f.root
}

// Close discards the in-memory tree without touching disk.
func (f *File) Close() {
	f.doc = nil
	f.root = nil
}

// Load reads the document from disk, falling back to the backup file and
// then, when permitted, to a fresh empty document. On success the returned
// element is the live root. See the package comment for the recovery rules.
func (f *File) Load(overwriteInvalid bool) (*etree.Element, error) {
	f.Close()

	if f.path == "" {
		return nil, errors.New(errors.ErrPathUnbound, "no file path bound")
	}

	redirected := f.redirectedName()
	backupPath := redirected + BackupSuffix

	primaryErr := f.openFile(redirected)
	if primaryErr == nil {
		f.modTime = f.mtimeOf(redirected)
		return f.root, nil
	}

	loadErr := errors.Wrapf(primaryErr, failureCode(primaryErr),
		"the file %q could not be loaded; make sure it can be accessed and is a well-formed XML document", f.path)

	backupErr := f.openFile(backupPath)
	if backupErr != nil {
		// Create a new document if we are allowed to overwrite, or if
		// there is nothing worth recovering in either file.
		createEmpty := overwriteInvalid
		if f.sizeOf(redirected) <= 0 && f.sizeOf(backupPath) <= 0 {
			createEmpty = true
		}

		if createEmpty {
			f.createEmpty()
			f.modTime = f.mtimeOf(redirected)
			f.logger.Debug().Str("path", f.path).Msg("Created empty document")
			return f.root, nil
		}

		// File corrupt and no functional backup, give up.
		f.modTime = time.Time{}
		return nil, loadErr
	}

	// The backup loaded, restore it over the primary file.
	if err := f.copyFile(backupPath, redirected); err != nil {
		f.Close()
		f.modTime = time.Time{}
		return nil, errors.Wrapf(err, errors.ErrBackupRestore,
			"the valid backup file %q could not be restored", backupPath)
	}

	if err := f.fs.Remove(backupPath); err != nil {
		f.logger.Warn().Err(err).Str("path", backupPath).Msg("Failed to delete restored backup")
	}

	f.logger.Info().Str("path", f.path).Msg("Recovered document from backup")
	f.modTime = f.mtimeOf(redirected)
	return f.root, nil
}

// Modified reports whether the on-disk file changed since the last
// successful Load or Save. True when no modification time is on record,
// including right after Close, and when the file has disappeared.
func (f *File) Modified() bool {
	if f.path == "" {
		return false
	}
	if f.modTime.IsZero() {
		return true
	}

	fi, err := f.fs.Stat(f.path)
	if err != nil {
		return true
	}
	return !fi.ModTime().Equal(f.modTime)
}

// Save persists the document with the backup-then-write-then-fsync
// protocol. A failed save leaves the file unchanged from before the
// attempt. When reportErrors is set, failures also go through the
// notifier.
func (f *File) Save(reportErrors bool) error {
	var err error
	switch {
	case f.path == "":
		err = errors.New(errors.ErrPathUnbound, "no file path bound")
	case f.doc == nil:
		err = errors.New(errors.ErrInternal, "no document loaded")
	default:
		f.updateMetadata()
		err = f.saveFile()
		f.modTime = f.mtimeOf(f.path)
	}

	if err != nil && reportErrors {
		f.notify(err)
	}
	return err
}

// RawDataLength returns the number of bytes the serialized document
// occupies, for sizing a caller-supplied buffer.
func (f *File) RawDataLength() int {
	if f.doc == nil {
		return 0
	}
	var w countingWriter
	_, _ = f.doc.WriteTo(&w)
	return w.written
}

// RawDataTo serializes the document into buf and returns the total
// serialized length, which may exceed len(buf); excess bytes are counted
// but not written. The buffer is zero-filled first.
func (f *File) RawDataTo(buf []byte) int {
	for i := range buf {
		buf[i] = 0
	}
	if f.doc == nil {
		return 0
	}
	w := countingWriter{buf: buf}
	_, _ = f.doc.WriteTo(&w)
	return w.written
}

// ParseData loads the document from an in-memory buffer. The root element
// must match the expected name; on failure the file stays closed.
func (f *File) ParseData(data []byte) bool {
	f.Close()

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return false
	}
	root := doc.SelectElement(f.rootName)
	if root == nil {
		return false
	}

	f.doc = doc
	f.root = root
	return true
}

// IsFromFutureVersion reports whether the stamped version attribute is
// strictly newer than the running application version.
func (f *File) IsFromFutureVersion() bool {
	if f.root == nil {
		return false
	}
	stamped := f.root.SelectAttrValue("version", "")
	return version.Ordinal(f.appVersion) < version.Ordinal(stamped)
}

// redirectedName resolves one level of symlink indirection, so edits land
// on the link target rather than replacing the link itself. Falls back to
// the bound path when the target cannot be resolved. The window between
// resolving and writing is an accepted risk under the single-writer
// assumption.
func (f *File) redirectedName() string {
	fi, err := f.fs.Lstat(f.path)
	if err != nil || fi.Mode()&iofs.ModeSymlink == 0 {
		return f.path
	}

	target, err := f.fs.Readlink(f.path)
	if err != nil || target == "" {
		return f.path
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(f.path), target)
	}
	return target
}

// openFile reads and adopts the document at path. A zero-or-negative-size
// file is treated as absent, not as an error worth reporting.
func (f *File) openFile(path string) error {
	f.Close()

	if f.sizeOf(path) <= 0 {
		return errors.Newf(errors.ErrNotFound, "file %q is empty or absent", path)
	}

	data, err := f.fs.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrParseFailure, "could not read %q", path)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return parseError(err, path)
	}

	root := doc.SelectElement(f.rootName)
	if root == nil {
		if foreign := firstForeignChild(doc); foreign != "" {
			return errors.Newf(errors.ErrForeignRoot,
				"unknown root element %q, the file does not appear to be generated by this application", foreign)
		}
		if hasStrayText(doc) {
			return errors.Newf(errors.ErrParseFailure, "%q does not contain an XML document", path)
		}
		// Only a declaration or doctype survived; a truncated but
		// recoverable file. Synthesize the expected root in place.
		root = doc.CreateElement(f.rootName)
	}

	f.doc = doc
	f.root = root
	return nil
}

// createEmpty replaces the in-memory tree with a declaration and a bare
// root element.
func (f *File) createEmpty() {
	f.Close()

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	f.doc = doc
	f.root = doc.CreateElement(f.rootName)
}

// updateMetadata stamps the version and platform attributes, but never on
// foreign documents whose root does not match the expected name.
func (f *File) updateMetadata() {
	if f.root == nil || f.root.Tag != f.rootName {
		return
	}
	f.root.CreateAttr("version", f.appVersion)
	f.root.CreateAttr("platform", platformString())
}

// saveFile implements the atomic-replace-with-backup write. Order
// matters: never overwrite a file that has not been backed up, and never
// report success before the durability barrier.
func (f *File) saveFile() error {
	redirected := f.redirectedName()
	backupPath := redirected + BackupSuffix

	exists := false
	if fi, err := f.fs.Stat(redirected); err == nil && fi.Mode().IsRegular() {
		exists = true
		if err := f.copyFile(redirected, backupPath); err != nil {
			return errors.Wrap(err, errors.ErrBackupCreate, "failed to create backup copy of xml file")
		}
	}

	writeErr := f.writeFlushed(redirected)
	if writeErr != nil {
		// Net effect of a failed save must be "unchanged from before".
		if err := f.fs.Remove(redirected); err != nil {
			f.logger.Warn().Err(err).Str("path", redirected).Msg("Failed to delete partially written file")
		}
		if exists {
			if err := f.fs.Rename(backupPath, redirected); err != nil {
				f.logger.Error().Err(err).Str("path", redirected).Msg("Failed to restore backup after write failure")
			}
		}
		return errors.Wrap(writeErr, errors.ErrWriteFailure, "failed to write xml file")
	}

	if exists {
		if err := f.fs.Remove(backupPath); err != nil {
			f.logger.Warn().Err(err).Str("path", backupPath).Msg("Failed to delete backup after save")
		}
	}
	return nil
}

// writeFlushed serializes the document to path and forces the durability
// barrier before reporting success.
func (f *File) writeFlushed(path string) error {
	w, err := f.fs.Create(path)
	if err != nil {
		return err
	}

	_, writeErr := f.doc.WriteTo(w)
	var syncErr error
	if writeErr == nil {
		syncErr = w.Sync()
	}
	closeErr := w.Close()

	if writeErr != nil {
		return writeErr
	}
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}

func (f *File) copyFile(src, dst string) error {
	data, err := f.fs.ReadFile(src)
	if err != nil {
		return err
	}
	return f.fs.WriteFile(dst, data, 0644)
}

func (f *File) sizeOf(path string) int64 {
	fi, err := f.fs.Stat(path)
	if err != nil {
		return -1
	}
	return fi.Size()
}

func (f *File) mtimeOf(path string) time.Time {
	fi, err := f.fs.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

// failureCode keeps the foreign-root diagnosis distinct through the
// fallback chain, so callers can warn instead of overwriting someone
// else's file.
func failureCode(err error) errors.ErrorCode {
	if errors.IsErrorCode(err, errors.ErrForeignRoot) {
		return errors.ErrForeignRoot
	}
	return errors.ErrParseFailure
}

// parseError includes the parse position when the underlying decoder
// provides one.
func parseError(err error, path string) error {
	var syntaxErr *xml.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return errors.Wrapf(err, errors.ErrParseFailure, "invalid XML in %q at line %d", path, syntaxErr.Line)
	}
	return errors.Wrapf(err, errors.ErrParseFailure, "invalid XML in %q", path)
}

// firstForeignChild returns the tag of the first top-level element when
// the document has a real root that is not ours.
func firstForeignChild(doc *etree.Document) string {
	if root := doc.Root(); root != nil {
		return root.Tag
	}
	return ""
}

// hasStrayText reports whether the parsed document consists of top-level
// text rather than markup, which the decoder tolerates but no XML
// document may contain.
func hasStrayText(doc *etree.Document) bool {
	for _, child := range doc.Child {
		if cd, ok := child.(*etree.CharData); ok {
			if strings.TrimSpace(cd.Data) != "" {
				return true
			}
		}
	}
	return false
}

func platformString() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "mac"
	}
	return "*nix"
}

// countingWriter counts every byte and copies the prefix that fits into
// buf, so callers can size a buffer with one pass and fill it with a
// second without risking overflow.
type countingWriter struct {
	buf     []byte
	written int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	if w.written < len(w.buf) {
		copy(w.buf[w.written:], p)
	}
	w.written += len(p)
	return len(p), nil
}
