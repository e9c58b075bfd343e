package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/internal/domain/service"
	"partmatch/pkg/errors"
	"partmatch/pkg/utils"
)

type fakeChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*entity.Chat
	messages map[string][]*entity.Message
	calls    int
	failMsg  error
	seq      int
	// beforeCreate runs ahead of Create's insert, standing in for a
	// concurrent writer.
	beforeCreate func(r *fakeChatRepo, chat *entity.Chat)
}

func newFakeChatRepo(chats ...*entity.Chat) *fakeChatRepo {
	r := &fakeChatRepo{
		chats:    make(map[string]*entity.Chat),
		messages: make(map[string][]*entity.Message),
	}
	for _, c := range chats {
		c.Participants = []string{c.BuyerID, c.SellerID}
		r.chats[c.ID] = c
	}
	return r
}

func (r *fakeChatRepo) touch() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.touch()
	if chat.ID == "" {
		chat.ID = entity.ChatDocID(chat.BuyerID, chat.SellerID, chat.PartID)
	}
	if r.beforeCreate != nil {
		r.beforeCreate(r, chat)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.chats[chat.ID]; exists {
		return errors.Conflict("chat already exists")
	}
	chat.Participants = []string{chat.BuyerID, chat.SellerID}
	c := *chat
	r.chats[chat.ID] = &c
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeChatRepo) FindByPair(ctx context.Context, buyerID, sellerID, partID string) (*entity.Chat, error) {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chats {
		if c.BuyerID == buyerID && c.SellerID == sellerID && c.PartID == partID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *fakeChatRepo) ListBetween(ctx context.Context, a, b string) ([]*entity.Chat, error) {
	all, _ := r.ListAllByUserID(ctx, a)
	var out []*entity.Chat
	for _, c := range all {
		if c.HasParticipant(b) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	all, _ := r.ListAllByUserID(ctx, userID)
	start, end := utils.Window(len(all), limit, offset)
	return all[start:end], int64(len(all)), nil
}

func (r *fakeChatRepo) ListAllByUserID(ctx context.Context, userID string) ([]*entity.Chat, error) {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Chat
	for _, c := range r.chats {
		if c.HasParticipant(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeChatRepo) ApplyMessage(ctx context.Context, chatID string, u repository.ChatUpdate) error {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	c.LastMessage = u.LastMessage
	c.LastSenderID = u.LastSenderID
	c.LastMessageAt = u.LastMessageAt
	c.UpdatedAt = u.LastMessageAt
	switch u.IncrementRole {
	case entity.RoleBuyer:
		c.BuyerUnreadCount++
	case entity.RoleSeller:
		c.SellerUnreadCount++
	}
	return nil
}

func (r *fakeChatRepo) ResetUnread(ctx context.Context, chatID string, role entity.ChatRole) error {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	if role == entity.RoleBuyer {
		c.BuyerUnreadCount = 0
	} else {
		c.SellerUnreadCount = 0
	}
	return nil
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, m *entity.Message) error {
	r.touch()
	if r.failMsg != nil {
		return r.failMsg
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		r.seq++
		m.ID = fmt.Sprintf("msg-%03d", r.seq)
	}
	r.messages[m.ChatID] = append(r.messages[m.ChatID], m)
	return nil
}

func (r *fakeChatRepo) GetMessagesByChat(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	all, _ := r.ListAllMessages(ctx, chatID)
	start, end := utils.Window(len(all), limit, offset)
	return all[start:end], int64(len(all)), nil
}

func (r *fakeChatRepo) ListAllMessages(ctx context.Context, chatID string) ([]*entity.Message, error) {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Message(nil), r.messages[chatID]...), nil
}

func (r *fakeChatRepo) MarkMessagesRead(ctx context.Context, chatID, readerID string) (int, error) {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages[chatID] {
		if m.SenderID != readerID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (r *fakeChatRepo) CountMessagesSince(ctx context.Context, chatID, exclude string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages[chatID] {
		if m.SenderID != exclude && !m.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeChatRepo) chat(id string) *entity.Chat {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.chats[id]
	return &cp
}

func (r *fakeChatRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeStatusRepo struct {
	mu      sync.Mutex
	history []entity.UserChatStatus
}

func (r *fakeStatusRepo) Upsert(ctx context.Context, s *entity.UserChatStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, *s)
	return nil
}

func (r *fakeStatusRepo) Get(ctx context.Context, userID, chatID string) (*entity.UserChatStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].UserID == userID && r.history[i].ChatID == chatID {
			s := r.history[i]
			return &s, nil
		}
	}
	return nil, errors.NotFound("Chat status", nil)
}

func (r *fakeStatusRepo) states() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, 0, len(r.history))
	for _, s := range r.history {
		out = append(out, s.IsTyping)
	}
	return out
}

type fakeProfileRepo struct {
	profiles map[string]*entity.Profile
}

func newFakeProfileRepo(profiles ...*entity.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: make(map[string]*entity.Profile)}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, errors.NotFound("Profile", nil)
	}
	return p, nil
}

func (r *fakeProfileRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Profile, error) {
	out := make(map[string]*entity.Profile)
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) ListInsightsSubscribers(ctx context.Context) ([]*entity.Profile, error) {
	var out []*entity.Profile
	for _, p := range r.profiles {
		if p.WeeklyInsights {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePartRepo struct {
	parts      map[string]*entity.CarPart
	promoted   map[string][2]*time.Time
	promoteErr error
}

func newFakePartRepo(parts ...*entity.CarPart) *fakePartRepo {
	r := &fakePartRepo{parts: make(map[string]*entity.CarPart), promoted: make(map[string][2]*time.Time)}
	for _, p := range parts {
		r.parts[p.ID] = p
	}
	return r
}

func (r *fakePartRepo) GetByID(ctx context.Context, id string) (*entity.CarPart, error) {
	p, ok := r.parts[id]
	if !ok {
		return nil, errors.NotFound("Car part", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePartRepo) ListBySeller(ctx context.Context, sellerID string) ([]*entity.CarPart, error) {
	var out []*entity.CarPart
	for _, p := range r.parts {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePartRepo) ListSellersByMake(ctx context.Context, carMake string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range r.parts {
		if p.Status == "active" && strings.EqualFold(p.Make, carMake) && !seen[p.SellerID] {
			seen[p.SellerID] = true
			out = append(out, p.SellerID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakePartRepo) UpdatePromotion(ctx context.Context, id string, featuredUntil, boostedUntil *time.Time) error {
	if r.promoteErr != nil {
		return r.promoteErr
	}
	r.promoted[id] = [2]*time.Time{featuredUntil, boostedUntil}
	return nil
}

type fakeRequestRepo struct {
	requests map[string]*entity.PartRequest
}

func newFakeRequestRepo(reqs ...*entity.PartRequest) *fakeRequestRepo {
	r := &fakeRequestRepo{requests: make(map[string]*entity.PartRequest)}
	for _, q := range reqs {
		r.requests[q.ID] = q
	}
	return r
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id string) (*entity.PartRequest, error) {
	q, ok := r.requests[id]
	if !ok {
		return nil, errors.NotFound("Part request", nil)
	}
	return q, nil
}

func (r *fakeRequestRepo) ListByBuyer(ctx context.Context, buyerID string) ([]*entity.PartRequest, error) {
	var out []*entity.PartRequest
	for _, q := range r.requests {
		if q.BuyerID == buyerID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeOfferRepo struct {
	offers map[string]*entity.Offer
}

func newFakeOfferRepo(offers ...*entity.Offer) *fakeOfferRepo {
	r := &fakeOfferRepo{offers: make(map[string]*entity.Offer)}
	for _, o := range offers {
		r.offers[o.ID] = o
	}
	return r
}

func (r *fakeOfferRepo) GetByID(ctx context.Context, id string) (*entity.Offer, error) {
	o, ok := r.offers[id]
	if !ok {
		return nil, errors.NotFound("Offer", nil)
	}
	return o, nil
}

func (r *fakeOfferRepo) UpdateStatus(ctx context.Context, id, status string) error {
	o, ok := r.offers[id]
	if !ok {
		return errors.NotFound("Offer", nil)
	}
	o.Status = status
	return nil
}

func (r *fakeOfferRepo) ListBySeller(ctx context.Context, sellerID string, since time.Time) ([]*entity.Offer, error) {
	var out []*entity.Offer
	for _, o := range r.offers {
		if o.SellerID == sellerID && !o.CreatedAt.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) ListByRequestIDs(ctx context.Context, ids []string, since time.Time) ([]*entity.Offer, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*entity.Offer
	for _, o := range r.offers {
		if want[o.RequestID] && !o.CreatedAt.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakePurchaseRepo struct {
	purchases []*entity.MonetizationPurchase
}

func (r *fakePurchaseRepo) Create(ctx context.Context, p *entity.MonetizationPurchase) error {
	r.purchases = append(r.purchases, p)
	return nil
}

type fakeFileRepo struct {
	files []*entity.FileMetadata
	err   error
}

func (r *fakeFileRepo) Create(ctx context.Context, m *entity.FileMetadata) error {
	if r.err != nil {
		return r.err
	}
	r.files = append(r.files, m)
	return nil
}

func (r *fakeFileRepo) GetByEntityID(ctx context.Context, entityType, entityID string) ([]*entity.FileMetadata, error) {
	var out []*entity.FileMetadata
	for _, f := range r.files {
		if f.EntityType == entityType && f.EntityID == entityID {
			out = append(out, f)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items []*entity.Notification
	err   error
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if n.ID == "" {
		n.ID = fmt.Sprintf("n-%d", len(r.items)+1)
	}
	r.items = append(r.items, n)
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, errors.NotFound("Notification", nil)
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.items {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	start, end := utils.Window(len(out), limit, offset)
	return out[start:end], int64(len(out)), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) forUser(userID string) []*entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeAdminRepo struct {
	items []*entity.AdminNotification
}

func (r *fakeAdminRepo) Create(ctx context.Context, n *entity.AdminNotification) error {
	r.items = append(r.items, n)
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
	types   map[string]string
	deleted []string
	calls   int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStorage) UploadObject(ctx context.Context, body io.Reader, contentType, objectName string) (*service.UploadedObject, error) {
	s.calls++
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	s.objects[objectName] = data
	s.types[objectName] = contentType
	return &service.UploadedObject{
		URL:        "https://storage.googleapis.com/chat-attachments/" + objectName,
		Bucket:     "chat-attachments",
		ObjectName: objectName,
		Size:       int64(len(data)),
	}, nil
}

func (s *fakeStorage) DeleteFile(ctx context.Context, fileURL string) error {
	s.deleted = append(s.deleted, fileURL)
	return nil
}

func (s *fakeStorage) Close() error { return nil }

type fakePush struct {
	mu   sync.Mutex
	sent []service.PushMessage
	err  error
}

func (p *fakePush) Send(ctx context.Context, msg service.PushMessage) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	p.sent = append(p.sent, msg)
	return len(msg.Tokens), nil
}

type fakeMailer struct {
	sent []service.Email
	fail map[string]error
}

func (m *fakeMailer) Send(ctx context.Context, email service.Email) error {
	if err := m.fail[email.To]; err != nil {
		return err
	}
	m.sent = append(m.sent, email)
	return nil
}

type fakeLLM struct {
	reply string
	err   error
	turns [][]service.ChatTurn
}

func (l *fakeLLM) Complete(ctx context.Context, turns []service.ChatTurn) (string, error) {
	l.turns = append(l.turns, turns)
	return l.reply, l.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*entity.ChangeEvent
}

func (p *fakePublisher) Publish(ctx context.Context, e *entity.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) byTable(table string, typ entity.ChangeType) []*entity.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*entity.ChangeEvent
	for _, e := range p.events {
		if e.Table == table && e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type fakeGateway struct {
	status string
	err    error
	calls  []service.PaymentRequest
}

func (g *fakeGateway) Charge(ctx context.Context, req service.PaymentRequest) (*service.PaymentResult, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	status := g.status
	if status == "" {
		status = "paid"
	}
	return &service.PaymentResult{Reference: "ref-" + req.OrderID, Status: status}, nil
}

type countingRecorder struct {
	mu          sync.Mutex
	messages    map[string]int
	failures    map[string]int
	escalations int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{messages: map[string]int{}, failures: map[string]int{}}
}

func (r *countingRecorder) ObserveMessage(t string) {
	r.mu.Lock()
	r.messages[t]++
	r.mu.Unlock()
}

func (r *countingRecorder) ObserveNotification(string) {}

func (r *countingRecorder) ObserveFailure(stage string) {
	r.mu.Lock()
	r.failures[stage]++
	r.mu.Unlock()
}

func (r *countingRecorder) ObserveEscalation() {
	r.mu.Lock()
	r.escalations++
	r.mu.Unlock()
}
