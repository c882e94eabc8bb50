// Package memory implementa los puertos de persistencia en memoria.
// Se usa en tests y con STORAGE_DRIVER=memory para desarrollo local sin PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var (
	_ repository.UserRepository        = (*UserRepo)(nil)
	_ repository.ProductRepository     = (*ProductRepo)(nil)
	_ repository.AppointmentRepository = (*AppointmentRepo)(nil)
	_ repository.CartRepository        = (*CartRepo)(nil)
	_ repository.ProductRepository     = (*txProductRepo)(nil)
	_ repository.CartRepository        = (*txCartRepo)(nil)
)

// Store guarda todas las colecciones. Cada operación es atómica sobre un documento.
// RunCheckout serializa las compras y, si fn falla, deshace solo los documentos que fn escribió.
type Store struct {
	mu           sync.RWMutex
	txMu         sync.Mutex
	users        map[string]entity.User
	products     map[string]entity.Product
	appointments map[string]entity.Appointment
	carts        map[string]entity.Cart
	// productRev y cartRev cuentan escrituras por clave; el rollback no pisa escrituras ajenas.
	productRev map[string]uint64
	cartRev    map[string]uint64
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		users:        make(map[string]entity.User),
		products:     make(map[string]entity.Product),
		appointments: make(map[string]entity.Appointment),
		carts:        make(map[string]entity.Cart),
		productRev:   make(map[string]uint64),
		cartRev:      make(map[string]uint64),
	}
}

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Products devuelve el repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Appointments devuelve el repositorio de citas.
func (s *Store) Appointments() *AppointmentRepo { return &AppointmentRepo{s: s} }

// Carts devuelve el repositorio de carritos.
func (s *Store) Carts() *CartRepo { return &CartRepo{s: s} }

// RunCheckout ejecuta fn de forma exclusiva frente a otras compras. Si fn devuelve error,
// restaura el valor previo de cada producto o carrito que fn escribió, salvo que otra
// petición lo haya escrito después.
func (s *Store) RunCheckout(ctx context.Context, fn func(products repository.ProductRepository, carts repository.CartRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	undo := &undoLog{}
	err := fn(&txProductRepo{ProductRepo: s.Products(), undo: undo}, &txCartRepo{CartRepo: s.Carts(), undo: undo})
	if err != nil {
		s.mu.Lock()
		undo.rollback()
		s.mu.Unlock()
	}
	return err
}

// undoLog acumula deshacer por documento; rollback corre en orden inverso con s.mu tomado.
type undoLog struct {
	steps []func()
}

func (u *undoLog) add(step func()) { u.steps = append(u.steps, step) }

func (u *undoLog) rollback() {
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
}

// Las funciones put*/drop* exigen s.mu tomado en escritura.

func (s *Store) putProduct(p entity.Product) {
	s.products[p.ID] = p
	s.productRev[p.ID]++
}

func (s *Store) dropProduct(id string) {
	delete(s.products, id)
	s.productRev[id]++
}

func (s *Store) putCart(c entity.Cart) {
	s.carts[c.UserID] = c
	s.cartRev[c.UserID]++
}

// rememberProduct registra cómo volver al estado previo de id, tras la escritura ya hecha.
// Deshacer devuelve también la revisión, así los pasos anteriores sobre la misma clave siguen aplicando.
func (s *Store) rememberProduct(u *undoLog, id string, prev entity.Product, had bool) {
	rev := s.productRev[id]
	u.add(func() {
		if s.productRev[id] != rev {
			return
		}
		if had {
			s.products[id] = prev
		} else {
			delete(s.products, id)
		}
		s.productRev[id] = rev - 1
	})
}

func (s *Store) rememberCart(u *undoLog, userID string, prev entity.Cart, had bool) {
	rev := s.cartRev[userID]
	u.add(func() {
		if s.cartRev[userID] != rev {
			return
		}
		if had {
			s.carts[userID] = prev
		} else {
			delete(s.carts, userID)
		}
		s.cartRev[userID] = rev - 1
	})
}

// txProductRepo es el ProductRepository que ve fn dentro de RunCheckout.
type txProductRepo struct {
	*ProductRepo
	undo *undoLog
}

func (r *txProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, had := r.s.products[p.ID]
	r.s.putProduct(*p)
	r.s.rememberProduct(r.undo, p.ID, prev, had)
	return nil
}

func (r *txProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, had := r.s.products[p.ID]
	if !had {
		return nil
	}
	r.s.putProduct(*p)
	r.s.rememberProduct(r.undo, p.ID, prev, had)
	return nil
}

func (r *txProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, had := r.s.products[id]
	if !had {
		return nil
	}
	r.s.dropProduct(id)
	r.s.rememberProduct(r.undo, id, prev, had)
	return nil
}

func (r *txProductRepo) DecrementStock(_ context.Context, id string, quantity int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.products[id]
	if !ok || prev.Stock < quantity {
		return false, nil
	}
	p := prev
	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	r.s.putProduct(p)
	r.s.rememberProduct(r.undo, id, prev, true)
	return true, nil
}

// txCartRepo es el CartRepository que ve fn dentro de RunCheckout.
type txCartRepo struct {
	*CartRepo
	undo *undoLog
}

func (r *txCartRepo) Save(_ context.Context, c *entity.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, had := r.s.carts[c.UserID]
	r.s.putCart(storedCart(c))
	r.s.rememberCart(r.undo, c.UserID, prev, had)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Users
// ──────────────────────────────────────────────────────────────────────────────

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Products
// ──────────────────────────────────────────────────────────────────────────────

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.putProduct(*p)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetForUpdate equivale a GetByID; RunCheckout serializa las compras.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		r.s.putProduct(*p)
	}
	return nil
}

func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		p := p
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; ok {
		r.s.dropProduct(id)
	}
	return nil
}

func (r *ProductRepo) DecrementStock(_ context.Context, id string, quantity int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	r.s.putProduct(p)
	return true, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Appointments
// ──────────────────────────────────────────────────────────────────────────────

// AppointmentRepo implementación en memoria de AppointmentRepository.
type AppointmentRepo struct{ s *Store }

func (r *AppointmentRepo) Create(_ context.Context, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appointments[a.ID] = copyAppointment(*a)
	return nil
}

func (r *AppointmentRepo) GetByID(_ context.Context, id string) (*entity.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	a = copyAppointment(a)
	return &a, nil
}

func (r *AppointmentRepo) Update(_ context.Context, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[a.ID]; ok {
		r.s.appointments[a.ID] = copyAppointment(*a)
	}
	return nil
}

func (r *AppointmentRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.appointments[id]; ok {
		a.Status = status
		a.UpdatedAt = time.Now()
		r.s.appointments[id] = a
	}
	return nil
}

func (r *AppointmentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.appointments, id)
	return nil
}

func (r *AppointmentRepo) List(_ context.Context, f repository.AppointmentFilter) ([]*entity.AppointmentDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.AppointmentDetail
	for _, a := range r.s.appointments {
		if f.UserID != "" && a.UserID != f.UserID {
			continue
		}
		if len(f.Statuses) > 0 && !contains(f.Statuses, a.Status) {
			continue
		}
		d := &entity.AppointmentDetail{Appointment: copyAppointment(a), PartNames: map[string]string{}}
		if u, ok := r.s.users[a.UserID]; ok {
			d.OwnerEmail = u.Email
		}
		for _, pid := range a.PartIDs {
			if p, ok := r.s.products[pid]; ok {
				d.PartNames[pid] = p.Name
			}
		}
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ScheduledAt.Before(list[j].ScheduledAt) })
	return list, nil
}

func (r *AppointmentRepo) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.appointments {
		if a.Status == entity.AppointmentScheduled && !a.ScheduledAt.After(now) {
			a.Status = entity.AppointmentExpired
			a.UpdatedAt = now
			r.s.appointments[id] = a
			n++
		}
	}
	return n, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Carts
// ──────────────────────────────────────────────────────────────────────────────

// CartRepo implementación en memoria de CartRepository.
type CartRepo struct{ s *Store }

func (r *CartRepo) Get(_ context.Context, userID string) (*entity.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.carts[userID]
	if !ok {
		return nil, nil
	}
	c = copyCart(c)
	for i := range c.Items {
		if p, ok := r.s.products[c.Items[i].ProductID]; ok {
			p := p
			c.Items[i].Product = &p
		}
	}
	return &c, nil
}

func (r *CartRepo) Save(_ context.Context, c *entity.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.putCart(storedCart(c))
	return nil
}

// storedCart copia el carrito sin los productos resueltos.
func storedCart(c *entity.Cart) entity.Cart {
	stored := copyCart(*c)
	for i := range stored.Items {
		stored.Items[i].Product = nil
	}
	return stored
}

func copyAppointment(a entity.Appointment) entity.Appointment {
	a.PartIDs = append([]string(nil), a.PartIDs...)
	return a
}

func copyCart(c entity.Cart) entity.Cart {
	c.Items = append([]entity.CartItem(nil), c.Items...)
	return c
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
