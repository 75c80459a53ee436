package present

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"confirmflow/order"
)

// Presenter builds page views for resolved orders.
type Presenter struct {
	checker ImageChecker
	logger  *zap.Logger
}

// NewPresenter creates a Presenter. A nil checker uses ExtensionChecker.
func NewPresenter(checker ImageChecker, logger *zap.Logger) *Presenter {
	if checker == nil {
		checker = ExtensionChecker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Presenter{checker: checker, logger: logger}
}

// Render groups the order fields and classifies every present attachment slot.
func (p *Presenter) Render(ctx context.Context, o order.Order) View {
	v := View{
		Number: o.Number,
		General: Group{
			Title: "Información del Pedido",
			Fields: []Field{
				field("Número", o.Number),
				field("Cliente", o.Customer),
				field("Vendedor", o.Salesperson),
				field("Entrega", o.DeliveryDate),
			},
		},
		Specs: Group{
			Title: "Especificaciones",
			Fields: []Field{
				field("Diseño", o.DesignName),
				field("Colores Hilos", o.ThreadColors),
				field("Medidas", o.Measurements),
				field("Posición", o.Position),
			},
		},
	}

	// Slots are checked concurrently so slow probes overlap; each slot still
	// recovers on its own.
	var slots [order.AttachmentSlots]*Attachment
	var g errgroup.Group
	for i, ref := range o.Attachments {
		if IsAbsent(ref) {
			continue
		}
		g.Go(func() error {
			a := p.attachment(ctx, i+1, ref)
			slots[i] = &a
			return nil
		})
	}
	_ = g.Wait()

	for _, a := range slots {
		if a != nil {
			v.Attachments = append(v.Attachments, *a)
		}
	}
	return v
}

// attachment classifies one slot. A failing checker degrades only this slot
// to a link.
func (p *Presenter) attachment(ctx context.Context, slot int, ref string) (a Attachment) {
	a = Attachment{
		Slot:    slot,
		Caption: fmt.Sprintf("Diseño %d", slot),
		Ref:     ref,
		Kind:    KindLink,
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("attachment check panicked",
				zap.Int("slot", slot),
				zap.Any("panic", r))
			a.Kind = KindLink
		}
	}()

	if p.checker.IsImage(ctx, ref) {
		a.Kind = KindImage
	}
	return a
}
