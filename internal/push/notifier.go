package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/model"
)

const sendTimeout = 15 * time.Second

// Sender delivers one payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub Subscription, payload Payload) error
}

// Roster resolves which members hold a role.
type Roster interface {
	Members(role model.Role) []model.Member
}

// Notifier turns ledger events into push notifications for the members
// concerned: parents hear about claims to review and purchases to hand over,
// members hear about the outcome of their own claims.
type Notifier struct {
	sender   Sender
	registry *Registry
	logger   *slog.Logger

	mu     sync.RWMutex
	roster Roster
	wg     sync.WaitGroup
}

var _ engine.Notifier = (*Notifier)(nil)

func NewNotifier(sender Sender, registry *Registry, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{sender: sender, registry: registry, logger: logger.With("component", "push")}
}

// SetRoster must be called before parent-directed notifications can be routed.
func (n *Notifier) SetRoster(r Roster) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.roster = r
}

// Notify never blocks on the push services; deliveries run in the background.
func (n *Notifier) Notify(ev engine.Event) {
	switch {
	case ev.Entity == "member" && ev.Action == "renamed":
		n.registry.RenameMember(ev.Member, ev.ID)
		return
	case ev.Entity == "member" && ev.Action == "deleted":
		n.registry.RemoveMember(ev.ID)
		return
	}

	payload, recipients, ok := n.route(ev)
	if !ok {
		return
	}
	subs := n.registry.ForMembers(recipients...)
	if len(subs) == 0 {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(subs, payload)
	}()
}

// Wait blocks until background deliveries have finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// SendTo delivers payload to every subscription of member and returns how
// many succeeded.
func (n *Notifier) SendTo(ctx context.Context, member string, payload Payload) int {
	return n.send(ctx, n.registry.ForMembers(member), payload)
}

func (n *Notifier) deliver(subs []Subscription, payload Payload) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	n.send(ctx, subs, payload)
}

func (n *Notifier) send(ctx context.Context, subs []Subscription, payload Payload) int {
	sent := 0
	for _, sub := range subs {
		err := n.sender.Send(ctx, sub, payload)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, ErrExpired):
			n.registry.Remove(sub.Endpoint)
			n.logger.Info("removed expired subscription", "member", sub.Member)
		default:
			n.logger.Warn("push send failed", "member", sub.Member, "tag", payload.Tag, "error", err)
		}
	}
	return sent
}

func (n *Notifier) parents(except string) []string {
	n.mu.RLock()
	roster := n.roster
	n.mu.RUnlock()
	if roster == nil {
		return nil
	}
	var names []string
	for _, m := range roster.Members(model.RoleParent) {
		if m.Name != except {
			names = append(names, m.Name)
		}
	}
	return names
}

func (n *Notifier) route(ev engine.Event) (Payload, []string, bool) {
	switch ev.Entity + "." + ev.Action {
	case "claim.submitted":
		return Payload{
			Title: "Mission à valider",
			Body:  fmt.Sprintf("%s attend une validation", ev.Member),
			URL:   "/claims",
			Tag:   "claim-" + ev.ID,
		}, n.parents(ev.Member), true
	case "claim.settled":
		return Payload{
			Title: "Mission validée",
			Body:  "Tes points ont été crédités",
			URL:   "/ranking",
			Tag:   "claim-" + ev.ID,
		}, []string{ev.Member}, true
	case "claim.rejected":
		return Payload{
			Title: "Mission refusée",
			Body:  "Un parent n'a pas validé ta mission",
			URL:   "/tasks",
			Tag:   "claim-" + ev.ID,
		}, []string{ev.Member}, true
	case "reward.purchased":
		return Payload{
			Title: "Récompense achetée",
			Body:  fmt.Sprintf("%s a acheté une récompense", ev.Member),
			URL:   "/deliveries",
			Tag:   "reward-" + ev.ID,
		}, n.parents(ev.Member), true
	case "delivery.delivered":
		return Payload{
			Title: "Récompense remise",
			Body:  "Profite bien !",
			URL:   "/rewards",
			Tag:   "delivery-" + ev.ID,
		}, []string{ev.Member}, true
	}
	return Payload{}, nil, false
}
