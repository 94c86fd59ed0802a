package lint

import (
	"fmt"

	"github.com/plugdev/pluglint/pkg/model"
)

// Severity classifies a lint item.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarn    Severity = "WARN"
	SeverityInfo    Severity = "INFO"
	SeveritySuccess Severity = "SUCCESS"
)

// Category tags group items by the rule family that produced them.
const (
	CategoryProcess     = "process"
	CategoryEvent       = "event"
	CategoryGateway     = "gateway"
	CategoryListener    = "listener"
	CategoryInjection   = "field-injection"
	CategoryResource    = "resource"
	CategoryCardinality = "cardinality"
	CategoryReadAccess  = "read-access"
	CategoryReference   = "reference"
	CategoryCapability  = "capability"
	CategoryLeftover    = "leftover"
	CategoryStructural  = "structural"
)

// Item is a single finding. Items are immutable once created; collections
// only ever append them.
type Item struct {
	Severity Severity      `json:"severity"`
	Category string        `json:"category"`
	Subject  model.FileRef `json:"subject"`
	Message  string        `json:"message"`
}

func (i Item) String() string {
	return fmt.Sprintf("[%s] %s %s: %s", i.Severity, i.Category, i.Subject, i.Message)
}

// Success is the single factory every rule uses for its passing outcome, so
// the success taxonomy stays centralized.
func Success(category string, subject model.FileRef, message string) Item {
	return Item{Severity: SeveritySuccess, Category: category, Subject: subject, Message: message}
}

// Successf creates a success item with a formatted message.
func Successf(category string, subject model.FileRef, format string, args ...any) Item {
	return Success(category, subject, fmt.Sprintf(format, args...))
}

// Error creates an error-severity item.
func Error(category string, subject model.FileRef, message string) Item {
	return Item{Severity: SeverityError, Category: category, Subject: subject, Message: message}
}

// Errorf creates an error-severity item with a formatted message.
func Errorf(category string, subject model.FileRef, format string, args ...any) Item {
	return Error(category, subject, fmt.Sprintf(format, args...))
}

// Warn creates a warn-severity item.
func Warn(category string, subject model.FileRef, message string) Item {
	return Item{Severity: SeverityWarn, Category: category, Subject: subject, Message: message}
}

// Warnf creates a warn-severity item with a formatted message.
func Warnf(category string, subject model.FileRef, format string, args ...any) Item {
	return Warn(category, subject, fmt.Sprintf(format, args...))
}

// Info creates an info-severity item.
func Info(category string, subject model.FileRef, message string) Item {
	return Item{Severity: SeverityInfo, Category: category, Subject: subject, Message: message}
}

// Infof creates an info-severity item with a formatted message.
func Infof(category string, subject model.FileRef, format string, args ...any) Item {
	return Info(category, subject, fmt.Sprintf(format, args...))
}
