package gui

import "log/slog"

// DeliveryKind says how a delivery reached its target.
type DeliveryKind int

const (
	DeliverBubble DeliveryKind = iota
	DeliverDirected
	DeliverReturnable
	DeliverReturn
	DeliverSend
	DeliverCall
	DeliverHook
)

func (k DeliveryKind) String() string {
	switch k {
	case DeliverBubble:
		return "bubble"
	case DeliverDirected:
		return "directed"
	case DeliverReturnable:
		return "returnable"
	case DeliverReturn:
		return "return"
	case DeliverSend:
		return "send"
	case DeliverCall:
		return "call"
	case DeliverHook:
		return "hook"
	default:
		return "unknown"
	}
}

// OperationInfo describes a top-level operation: dispatch, send or call.
type OperationInfo struct {
	Seq    uint64
	Name   string
	Target ID
}

// DeliveryInfo describes one handler invocation within an operation.
// Parent is the Seq of the delivery that issued a nested Call, or 0.
type DeliveryInfo struct {
	Op     uint64
	Seq    int
	Parent int
	Kind   DeliveryKind
	Target ID
	Origin ID
}

// Observer receives dispatch and message lifecycle callbacks.
// All callbacks run synchronously on the operation's goroutine.
type Observer interface {
	OnOperationStart(op OperationInfo)
	OnDeliveryStart(d DeliveryInfo)
	OnDeliveryEnd(d DeliveryInfo, result string)
	OnOperationEnd(op OperationInfo, err error)
}

type nopObserver struct{}

func (nopObserver) OnOperationStart(OperationInfo)      {}
func (nopObserver) OnDeliveryStart(DeliveryInfo)        {}
func (nopObserver) OnDeliveryEnd(DeliveryInfo, string)  {}
func (nopObserver) OnOperationEnd(OperationInfo, error) {}

// MultiObserver fans out callbacks to multiple observers.
// A panic in one observer is logged and does not stop the others.
type MultiObserver struct {
	observers []Observer
	logger    *slog.Logger
}

// NewMultiObserver creates an observer that notifies all given observers.
// Nil observers are skipped.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	m := &MultiObserver{logger: slog.Default()}
	for _, o := range observers {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
	return m
}

func (m *MultiObserver) safeCall(name string, fn func(Observer)) {
	for _, o := range m.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("observer panicked", "callback", name, "panic", r)
				}
			}()
			fn(o)
		}()
	}
}

func (m *MultiObserver) OnOperationStart(op OperationInfo) {
	m.safeCall("OnOperationStart", func(o Observer) { o.OnOperationStart(op) })
}

func (m *MultiObserver) OnDeliveryStart(d DeliveryInfo) {
	m.safeCall("OnDeliveryStart", func(o Observer) { o.OnDeliveryStart(d) })
}

func (m *MultiObserver) OnDeliveryEnd(d DeliveryInfo, result string) {
	m.safeCall("OnDeliveryEnd", func(o Observer) { o.OnDeliveryEnd(d, result) })
}

func (m *MultiObserver) OnOperationEnd(op OperationInfo, err error) {
	m.safeCall("OnOperationEnd", func(o Observer) { o.OnOperationEnd(op, err) })
}
