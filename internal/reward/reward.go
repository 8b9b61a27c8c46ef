// Package reward is the reward catalog and the purchase workflow that spends
// points earned through the ledger.
package reward

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/foyer/internal/model"
)

type Fulfillment string

const (
	// FulfillmentImmediate settles a purchase on the spot.
	FulfillmentImmediate Fulfillment = "immediate"
	// FulfillmentQueued also opens a delivery ticket for a parent to close.
	FulfillmentQueued Fulfillment = "queued"
)

type BalanceMode string

const (
	// BalanceMember spends the buyer's own ranking points.
	BalanceMember BalanceMode = "member"
	// BalanceShared spends the household treasury.
	BalanceShared BalanceMode = "shared"
)

type Options struct {
	Fulfillment Fulfillment
	Balance     BalanceMode
}

// firstCustomID keeps custom ids clear of the built-in range.
const firstCustomID = 1000

var builtins = []model.Reward{
	{ID: 1, Name: "Dessert au choix", Description: "Choisir le dessert du dîner", Price: 30, Style: "sucre"},
	{ID: 2, Name: "30 minutes d'écran", Description: "Une demi-heure de tablette ou de console en plus", Price: 40, Style: "ecran"},
	{ID: 3, Name: "Film du soir", Description: "Choisir le film de la soirée en famille", Price: 50, Style: "cinema"},
	{ID: 4, Name: "Soirée pyjama", Description: "Inviter un ami à dormir", Price: 120, Style: "etoile"},
	{ID: 5, Name: "Carte Super-Héros", Description: "Le badge officiel de super-héros du foyer", Price: 200, Style: "or", OneTime: true},
}

func Builtins() []model.Reward {
	out := slices.Clone(builtins)
	for i := range out {
		out[i].Builtin = true
	}
	return out
}

// All returns built-in rewards followed by custom rewards.
func All(st *model.State) []model.Reward {
	return append(Builtins(), st.CustomRewards...)
}

func Find(st *model.State, id int64) (model.Reward, error) {
	for _, r := range All(st) {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reward{}, &model.NotFoundError{Kind: "reward", Key: fmt.Sprint(id)}
}

// Offer is a reward as seen by one member.
type Offer struct {
	model.Reward
	AlreadyOwned bool `json:"already_owned"`
	Affordable   bool `json:"affordable"`
}

// Balance returns the points member can spend under mode.
func Balance(st *model.State, member string, mode BalanceMode) int {
	if mode == BalanceShared {
		return st.Treasury
	}
	return st.Ranking[member]
}

func List(st *model.State, member string, opts Options) ([]Offer, error) {
	if _, ok := st.FindMember(member); !ok {
		return nil, &model.NotFoundError{Kind: "member", Key: member}
	}
	balance := Balance(st, member, opts.Balance)
	all := All(st)
	out := make([]Offer, 0, len(all))
	for _, r := range all {
		owned := r.OneTime && owns(st, member, r.ID)
		out = append(out, Offer{
			Reward:       r,
			AlreadyOwned: owned,
			Affordable:   !owned && balance >= r.Price,
		})
	}
	return out, nil
}

// Purchase spends the reward's price. Nothing changes when the purchase is
// refused. The returned ticket is nil unless fulfillment is queued.
func Purchase(st *model.State, member string, id int64, now time.Time, opts Options) (model.PurchaseRecord, *model.DeliveryTicket, error) {
	if _, ok := st.FindMember(member); !ok {
		return model.PurchaseRecord{}, nil, &model.NotFoundError{Kind: "member", Key: member}
	}
	r, err := Find(st, id)
	if err != nil {
		return model.PurchaseRecord{}, nil, err
	}
	if r.OneTime && owns(st, member, r.ID) {
		return model.PurchaseRecord{}, nil, &model.AlreadyOwnedError{Member: member, RewardID: r.ID}
	}
	balance := Balance(st, member, opts.Balance)
	if balance < r.Price {
		return model.PurchaseRecord{}, nil, &model.InsufficientPointsError{Member: member, Balance: balance, Price: r.Price}
	}

	if opts.Balance == BalanceShared {
		st.Treasury -= r.Price
	} else {
		st.Ranking[member] -= r.Price
	}

	rec := model.PurchaseRecord{
		Member:      member,
		RewardID:    r.ID,
		RewardName:  r.Name,
		Date:        now.Format(model.DateLayout),
		Price:       r.Price,
		PurchasedAt: now.UTC(),
	}
	st.Purchases = append(st.Purchases, rec)

	if opts.Fulfillment != FulfillmentQueued {
		return rec, nil, nil
	}
	ticket := model.DeliveryTicket{
		ID:         uuid.NewString(),
		Member:     member,
		RewardID:   r.ID,
		RewardName: r.Name,
		Date:       rec.Date,
	}
	st.Deliveries = append(st.Deliveries, ticket)
	return rec, &ticket, nil
}

// MarkDelivered closes a delivery ticket. Balances are not touched.
func MarkDelivered(st *model.State, ticketID string) (model.DeliveryTicket, error) {
	i := slices.IndexFunc(st.Deliveries, func(d model.DeliveryTicket) bool { return d.ID == ticketID })
	if i < 0 {
		return model.DeliveryTicket{}, &model.NotFoundError{Kind: "delivery", Key: ticketID}
	}
	ticket := st.Deliveries[i]
	st.Deliveries = slices.Delete(st.Deliveries, i, i+1)
	return ticket, nil
}

// Create adds a custom reward with the next free id.
func Create(st *model.State, def model.Reward) (model.Reward, error) {
	def, err := clean(def)
	if err != nil {
		return model.Reward{}, err
	}
	def.ID = nextID(st)
	st.CustomRewards = append(st.CustomRewards, def)
	return def, nil
}

// Update replaces the fields of the custom reward with def.ID.
func Update(st *model.State, def model.Reward) (model.Reward, error) {
	i, err := customIndex(st, def.ID)
	if err != nil {
		return model.Reward{}, err
	}
	def, err = clean(def)
	if err != nil {
		return model.Reward{}, err
	}
	st.CustomRewards[i] = def
	return def, nil
}

// Delete removes a custom reward. Past purchases keep their record.
func Delete(st *model.State, id int64) error {
	i, err := customIndex(st, id)
	if err != nil {
		return err
	}
	st.CustomRewards = slices.Delete(st.CustomRewards, i, i+1)
	return nil
}

func clean(def model.Reward) (model.Reward, error) {
	def.Name = strings.TrimSpace(def.Name)
	def.Description = strings.TrimSpace(def.Description)
	def.Style = strings.TrimSpace(def.Style)
	def.Builtin = false
	if def.Name == "" {
		return def, &model.ValidationError{Field: "name", Message: "name is required"}
	}
	if def.Price <= 0 {
		return def, &model.ValidationError{Field: "price", Message: "price must be > 0"}
	}
	if def.Style == "" {
		def.Style = "classique"
	}
	return def, nil
}

func customIndex(st *model.State, id int64) (int, error) {
	if slices.ContainsFunc(builtins, func(r model.Reward) bool { return r.ID == id }) {
		return -1, &model.ValidationError{Field: "id", Message: "built-in rewards cannot be changed"}
	}
	i := slices.IndexFunc(st.CustomRewards, func(r model.Reward) bool { return r.ID == id })
	if i < 0 {
		return -1, &model.NotFoundError{Kind: "reward", Key: fmt.Sprint(id)}
	}
	return i, nil
}

// nextID is one past every custom id still referenced, including ids of
// deleted rewards that purchases or tickets point to, so old records never
// attach to a new reward.
func nextID(st *model.State) int64 {
	id := int64(firstCustomID - 1)
	for _, r := range st.CustomRewards {
		id = max(id, r.ID)
	}
	for _, p := range st.Purchases {
		id = max(id, p.RewardID)
	}
	for _, d := range st.Deliveries {
		id = max(id, d.RewardID)
	}
	return id + 1
}

func owns(st *model.State, member string, id int64) bool {
	return slices.ContainsFunc(st.Purchases, func(p model.PurchaseRecord) bool {
		return p.Member == member && p.RewardID == id
	})
}
