// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/invowk/capgate/pkg/fspath"
	"github.com/invowk/capgate/pkg/types"
)

type (
	// Resolver probes candidate roots for capabilities. It only reads the
	// filesystem; it never creates anything and holds no per-call state, so a
	// single Resolver can serve any number of Resolve calls.
	Resolver struct {
		fs     afero.Fs
		logger *log.Logger
	}

	// Option configures a Resolver.
	Option func(*Resolver)

	// Result is the outcome of resolving one capability name.
	Result struct {
		// Found is true when some candidate root contained the capability.
		Found bool
		// Name is the capability name that was probed.
		Name types.ModuleName
		// MatchedName is the base name of the matched directory. It differs
		// from Name for fuzzy matches ("CoolImGuiFork" for "ImGui").
		MatchedName string
		// Root is the candidate root directory that matched.
		Root types.FilesystemPath
		// Path is the directory whose existence satisfied the probe.
		Path types.FilesystemPath
		// Strategy is the strategy of the matching root.
		Strategy Strategy
		// Diagnostics are the recoverable problems met while probing, in order.
		Diagnostics []Diagnostic
	}
)

// WithFs sets the filesystem the resolver reads. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(r *Resolver) {
		r.fs = fsys
	}
}

// WithLogger sets the logger for match and warning lines.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver reading the OS filesystem and logging to stderr.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		fs:     afero.NewOsFs(),
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "discovery"}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve probes roots in order for name and returns the first match. When
// nothing matches, the returned Result has Found == false. Resolve never fails:
// unexpected filesystem errors become warning diagnostics on the Result.
func (r *Resolver) Resolve(name types.ModuleName, roots []CandidateRoot) Result {
	res := Result{Name: name}

	if err := name.Validate(); err != nil {
		d := NewDiagnostic(SeverityError, CodeInvalidName, fmt.Sprintf("cannot probe capability: %v", err))
		d.Cause = err
		res.Diagnostics = append(res.Diagnostics, d)
		r.logger.Warn("skipping capability with invalid name", "name", name, "error", err)
		return res
	}

	for _, root := range roots {
		path, ok := r.probe(name, root, &res.Diagnostics)
		if !ok {
			continue
		}
		res.Found = true
		res.Root = root.Dir
		res.Path = path
		res.Strategy = root.Strategy
		res.MatchedName = matchedName(name, root, path)
		r.logger.Info("found capability", "name", name, "strategy", root.Strategy, "path", path)
		return res
	}

	r.logger.Info("capability not found", "name", name, "roots", len(roots))
	return res
}

// probe checks a single root according to its strategy's match kind.
func (r *Resolver) probe(name types.ModuleName, root CandidateRoot, diags *[]Diagnostic) (types.FilesystemPath, bool) {
	switch root.Strategy.Kind() {
	case KindNestedSource:
		target := fspath.JoinStr(fspath.JoinName(root.Dir, name), SourceDirName, ThirdPartyDirName)
		return target, r.dirExists(target, root.Strategy, diags)
	case KindSubstringFuzzy:
		return r.probeFuzzy(name, root, diags)
	default:
		target := fspath.JoinName(root.Dir, name)
		return target, r.dirExists(target, root.Strategy, diags)
	}
}

// probeFuzzy enumerates the immediate subdirectories of root in lexical order.
// A subdirectory matches when its name contains name; project roots also
// accept <subdir>/Source/<name>.
func (r *Resolver) probeFuzzy(name types.ModuleName, root CandidateRoot, diags *[]Diagnostic) (types.FilesystemPath, bool) {
	entries, err := afero.ReadDir(r.fs, string(root.Dir))
	if err != nil {
		if !isMissing(err) {
			r.warn(diags, root.Dir, root.Strategy, "failed to list directory", err)
		}
		return "", false
	}

	for _, entry := range entries {
		subdir := fspath.JoinStr(root.Dir, entry.Name())
		if !r.isDirEntry(entry, subdir, root.Strategy, diags) {
			continue
		}
		if strings.Contains(entry.Name(), string(name)) {
			return subdir, true
		}
		if root.Strategy.checksSourceDir() {
			source := fspath.JoinName(fspath.JoinStr(subdir, SourceDirName), name)
			if r.dirExists(source, root.Strategy, diags) {
				return source, true
			}
		}
	}
	return "", false
}

// isDirEntry reports whether a listed entry is a directory. ReadDir does not
// follow symlinks, so a linked entry is resolved with Stat.
func (r *Resolver) isDirEntry(entry os.FileInfo, path types.FilesystemPath, strategy Strategy, diags *[]Diagnostic) bool {
	if entry.Mode()&os.ModeSymlink == 0 {
		return entry.IsDir()
	}
	return r.dirExists(path, strategy, diags)
}

// dirExists reports whether path is an existing directory. Missing paths are
// plain misses; any other stat failure is recorded as a warning and also
// counts as a miss.
func (r *Resolver) dirExists(path types.FilesystemPath, strategy Strategy, diags *[]Diagnostic) bool {
	info, err := r.fs.Stat(string(path))
	if err != nil {
		if !isMissing(err) {
			r.warn(diags, path, strategy, "failed to stat directory", err)
		}
		return false
	}
	return info.IsDir()
}

func (r *Resolver) warn(diags *[]Diagnostic, path types.FilesystemPath, strategy Strategy, msg string, err error) {
	r.logger.Warn(msg, "path", path, "strategy", strategy, "error", err)
	*diags = append(*diags, NewDiagnosticWithCause(
		SeverityWarning, CodeProbeIOError, fmt.Sprintf("%s %s: %v", msg, path, err), path, strategy, err))
}

// isMissing reports whether err means the path (or one of its parents) does
// not exist as a directory.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func matchedName(name types.ModuleName, root CandidateRoot, path types.FilesystemPath) string {
	switch root.Strategy.Kind() {
	case KindNestedSource:
		return string(name)
	case KindSubstringFuzzy:
		if fspath.Base(path) == string(name) && fspath.Base(fspath.Dir(path)) == SourceDirName {
			// <subdir>/Source/<name>: report the plugin that hosts the module.
			return fspath.Base(fspath.Dir(fspath.Dir(path)))
		}
		return fspath.Base(path)
	default:
		return fspath.Base(path)
	}
}
