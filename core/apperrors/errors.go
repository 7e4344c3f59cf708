package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure returned by the repository engine.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAmbiguousID
	KindFileNotFound
	KindNothingToRemove
	KindEmptyMessage
	KindNoChanges
	KindUntrackedFileInTheWay
	KindNoSuchBranch
	KindBranchAlreadyExists
	KindSelfMerge
	KindNoOpCheckout
	KindUncommittedChanges
	KindGivenBranchIsAncestor
	KindCannotRemoveActiveBranch
	KindFileNotInCommit
	KindNoSuchCommit
	KindNoMatch
	KindRepositoryExists
	KindNotARepository
	KindIgnoredFile
	KindInvalidBranchName
)

var kindNames = map[Kind]string{
	KindUnknown:                  "Unknown",
	KindNotFound:                 "NotFound",
	KindAmbiguousID:              "AmbiguousId",
	KindFileNotFound:             "FileNotFound",
	KindNothingToRemove:          "NothingToRemove",
	KindEmptyMessage:             "EmptyMessage",
	KindNoChanges:                "NoChanges",
	KindUntrackedFileInTheWay:    "UntrackedFileInTheWay",
	KindNoSuchBranch:             "NoSuchBranch",
	KindBranchAlreadyExists:      "BranchAlreadyExists",
	KindSelfMerge:                "SelfMerge",
	KindNoOpCheckout:             "NoOpCheckout",
	KindUncommittedChanges:       "UncommittedChanges",
	KindGivenBranchIsAncestor:    "GivenBranchIsAncestor",
	KindCannotRemoveActiveBranch: "CannotRemoveActiveBranch",
	KindFileNotInCommit:          "FileNotInCommit",
	KindNoSuchCommit:             "NoSuchCommit",
	KindNoMatch:                  "NoMatch",
	KindRepositoryExists:         "RepositoryExists",
	KindNotARepository:           "NotARepository",
	KindIgnoredFile:              "IgnoredFile",
	KindInvalidBranchName:        "InvalidBranchName",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var defaultMessages = map[Kind]string{
	KindNotFound:                 "Object does not exist.",
	KindAmbiguousID:              "Commit id is ambiguous.",
	KindFileNotFound:             "File does not exist.",
	KindNothingToRemove:          "No reason to remove the file.",
	KindEmptyMessage:             "Please enter a commit message.",
	KindNoChanges:                "No changes added to the commit.",
	KindUntrackedFileInTheWay:    "There is an untracked file in the way; delete it, or add and commit it first.",
	KindNoSuchBranch:             "No such branch exists.",
	KindBranchAlreadyExists:      "A branch with that name already exists.",
	KindSelfMerge:                "Cannot merge a branch with itself.",
	KindNoOpCheckout:             "No need to checkout the current branch.",
	KindUncommittedChanges:       "You have uncommitted changes.",
	KindGivenBranchIsAncestor:    "Given branch is an ancestor of the current branch.",
	KindCannotRemoveActiveBranch: "Cannot remove the current branch.",
	KindFileNotInCommit:          "File does not exist in that commit.",
	KindNoSuchCommit:             "No commit with that id exists.",
	KindNoMatch:                  "Found no commit with that message.",
	KindRepositoryExists:         "A Gitlet version-control system already exists in the current directory.",
	KindNotARepository:           "Not in an initialized Gitlet directory.",
	KindIgnoredFile:              "The file is ignored.",
	KindInvalidBranchName:        "Invalid branch name.",
}

// DefaultMessage returns the user-facing text for a kind.
func DefaultMessage(kind Kind) string {
	return defaultMessages[kind]
}

// RepoError is a typed failure of a single repository operation.
type RepoError struct {
	Kind    Kind
	Subject string
	Message string
	Err     error
}

func (e RepoError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = DefaultMessage(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e RepoError) Unwrap() error {
	return e.Err
}

// Is matches any RepoError of the same kind, so the sentinels below work
// with errors.Is.
func (e RepoError) Is(target error) bool {
	var other RepoError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// UserMessage is the message without the wrapped cause.
func (e RepoError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return DefaultMessage(e.Kind)
}

var (
	ErrNotFound                 = RepoError{Kind: KindNotFound}
	ErrAmbiguousID              = RepoError{Kind: KindAmbiguousID}
	ErrFileNotFound             = RepoError{Kind: KindFileNotFound}
	ErrNothingToRemove          = RepoError{Kind: KindNothingToRemove}
	ErrEmptyMessage             = RepoError{Kind: KindEmptyMessage}
	ErrNoChanges                = RepoError{Kind: KindNoChanges}
	ErrUntrackedFileInTheWay    = RepoError{Kind: KindUntrackedFileInTheWay}
	ErrNoSuchBranch             = RepoError{Kind: KindNoSuchBranch}
	ErrBranchAlreadyExists      = RepoError{Kind: KindBranchAlreadyExists}
	ErrSelfMerge                = RepoError{Kind: KindSelfMerge}
	ErrNoOpCheckout             = RepoError{Kind: KindNoOpCheckout}
	ErrUncommittedChanges       = RepoError{Kind: KindUncommittedChanges}
	ErrGivenBranchIsAncestor    = RepoError{Kind: KindGivenBranchIsAncestor}
	ErrCannotRemoveActiveBranch = RepoError{Kind: KindCannotRemoveActiveBranch}
	ErrFileNotInCommit          = RepoError{Kind: KindFileNotInCommit}
	ErrNoSuchCommit             = RepoError{Kind: KindNoSuchCommit}
	ErrNoMatch                  = RepoError{Kind: KindNoMatch}
	ErrRepositoryExists         = RepoError{Kind: KindRepositoryExists}
	ErrNotARepository           = RepoError{Kind: KindNotARepository}
	ErrIgnoredFile              = RepoError{Kind: KindIgnoredFile}
	ErrInvalidBranchName        = RepoError{Kind: KindInvalidBranchName}
)

// KindOf returns the kind of the first RepoError in err's chain.
func KindOf(err error) Kind {
	var re RepoError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// New builds a RepoError with the kind's default message.
func New(kind Kind, subject string) error {
	return RepoError{Kind: kind, Subject: subject}
}

// Newf builds a RepoError with a custom message.
func Newf(kind Kind, subject, format string, args ...interface{}) error {
	return RepoError{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a RepoError.
func Wrap(kind Kind, subject string, err error) error {
	return RepoError{Kind: kind, Subject: subject, Err: err}
}

// FieldValidationError represents a field-specific validation error
type FieldValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e FieldValidationError) Error() string {
	return fmt.Sprintf("validation error for %s (%v): %s", e.Field, e.Value, e.Message)
}

// StorageError represents a storage-related error
type StorageError struct {
	Operation string
	Path      string
	Message   string
	Err       error
}

func (e StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage error during %s at %s: %s: %v", e.Operation, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("storage error during %s at %s: %s", e.Operation, e.Path, e.Message)
}

func (e StorageError) Unwrap() error {
	return e.Err
}

func NewFieldValidationError(field string, value interface{}, message string) error {
	return FieldValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

func NewStorageError(operation, path, message string, err error) error {
	return StorageError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}
