package cantonstream

import (
	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	idspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ids"
	jsoncodec "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/jsoncodec"
	ledgerpkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
	loggingpkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/logging"
	streampkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/stream"
	transportpkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/transport"
)

type (
	Config         = streampkg.Config
	Dependencies   = streampkg.Dependencies
	EventStream    = streampkg.EventStream
	Subscription   = streampkg.Subscription
	OverflowPolicy = streampkg.OverflowPolicy
	OffsetStore    = streampkg.OffsetStore
	Metrics        = streampkg.Metrics

	Offset            = ledgerpkg.Offset
	Party             = ledgerpkg.Party
	TemplateID        = ledgerpkg.TemplateID
	EventKind         = ledgerpkg.EventKind
	Event             = ledgerpkg.Event
	Transaction       = ledgerpkg.Transaction
	PartyFilter       = ledgerpkg.PartyFilter
	TransactionFilter = ledgerpkg.TransactionFilter

	Transport         = transportpkg.Transport
	TransportStream   = transportpkg.Stream
	TransportBuilder  = transportpkg.Builder
	TransportConfig   = transportpkg.Config
	TransportRegistry = transportpkg.Registry

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	BufferOverflowError   = errspkg.BufferOverflowError
	ConfigValidationError = errspkg.ConfigValidationError
)

var (
	New        = streampkg.New
	NewMetrics = streampkg.NewMetrics

	OffsetBegin = ledgerpkg.OffsetBegin
	OffsetEnd   = ledgerpkg.OffsetEnd
	OffsetAt    = ledgerpkg.OffsetAt

	ParseTemplateID      = ledgerpkg.ParseTemplateID
	NewTransactionFilter = ledgerpkg.NewTransactionFilter
	AllTemplates         = ledgerpkg.AllTemplates
	Templates            = ledgerpkg.Templates
	Interfaces           = ledgerpkg.Interfaces

	DefaultTransportRegistry = transportpkg.DefaultRegistry
	RegisterTransport        = transportpkg.Register
	BuildTransport           = transportpkg.Build

	NewSlogServiceLogger      = loggingpkg.NewSlogServiceLogger
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger
	NewWatermillAdapter       = loggingpkg.NewWatermillAdapter
	NopLogger                 = loggingpkg.Nop

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode
	Decode        = jsoncodec.Decode

	ErrConfigRequired     = errspkg.ErrConfigRequired
	ErrTransportRequired  = errspkg.ErrTransportRequired
	ErrLoggerRequired     = errspkg.ErrLoggerRequired
	ErrFilterRequired     = errspkg.ErrFilterRequired
	ErrInvalidOffset      = errspkg.ErrInvalidOffset
	ErrInvalidFilter      = errspkg.ErrInvalidFilter
	ErrSubscriptionClosed = errspkg.ErrSubscriptionClosed
	ErrBufferOverflow     = errspkg.ErrBufferOverflow

	IsFatal     = errspkg.IsFatal
	IsRetryable = errspkg.IsRetryable

	NewULID = idspkg.NewULID
)

// Overflow policies for the subscription buffer.
const (
	OverflowBlock      = streampkg.OverflowBlock
	OverflowDropOldest = streampkg.OverflowDropOldest
)

// Event kinds carried on Event.Kind.
const (
	EventCreated   = ledgerpkg.EventCreated
	EventArchived  = ledgerpkg.EventArchived
	EventExercised = ledgerpkg.EventExercised
)
