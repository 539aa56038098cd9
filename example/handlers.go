package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/runway"
	"github.com/dmitrymomot/runway/middlewares"
	"github.com/dmitrymomot/runway/pkg/db"
	"github.com/dmitrymomot/runway/pkg/mailer"
	"github.com/dmitrymomot/runway/pkg/queue"
	"github.com/dmitrymomot/runway/pkg/storage"
)

type greeting struct {
	Name string `query:"name" default:"world"`
}

func home(c runway.Context, g greeting) (string, error) {
	return c.T("home.greeting", "name", g.Name), nil
}

type errorParams struct {
	Code int    `param:"code"`
	ID   string `param:"id"`
}

func errorPage(p errorParams) error {
	return runway.NewHTTPError(p.Code, "requested error "+p.ID)
}

type note struct {
	CreatedAt  time.Time `json:"created_at"`
	Body       string    `json:"body"`
	Author     string    `json:"author"`
	Attachment string    `json:"attachment,omitempty"`
	ID         int64     `json:"id"`
}

type noteParams struct {
	ID int64 `param:"id"`
}

type listParams struct {
	Limit int `query:"limit" default:"20"`
}

type welcomePayload struct {
	Email string `json:"email"`
}

type notesHandler struct {
	pool  *pgxpool.Pool
	files storage.Disk
	queue *queue.Queue
}

func (h *notesHandler) Routes(r runway.Router) {
	r.Route("/notes", func(r runway.Router) {
		r.Group(func(r runway.Router) {
			r.Use(requireUser)
			r.POST("/", h.create)
			r.POST("/{id:\\d+}/attachment", h.attach)
		})
		r.Named("notes.attachment").GET("/{id:\\d+}/attachment", h.download)
	})
}

// listNotes is registered from routes.yaml; the pool is resolved from the container.
func listNotes(ctx context.Context, pool *pgxpool.Pool, p listParams) ([]note, error) {
	rows, err := pool.Query(ctx, `SELECT id, body, author, coalesce(attachment, ''), created_at
		FROM notes ORDER BY created_at DESC LIMIT $1`, p.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (note, error) {
		var n note
		err := row.Scan(&n.ID, &n.Body, &n.Author, &n.Attachment, &n.CreatedAt)
		return n, err
	})
}

func (h *notesHandler) create(c runway.Context) error {
	body := strings.TrimSpace(c.Request().FormValue("body"))
	if body == "" {
		return runway.ErrUnprocessable("note body is required")
	}
	author := middlewares.GetSession(c).UserID

	var id int64
	err := db.WithTx(c, h.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(c, `INSERT INTO notes (body, author) VALUES ($1, $2) RETURNING id`,
			body, author).Scan(&id); err != nil {
			return err
		}
		return h.queue.EnqueueTx(c, tx, "notes.welcome", welcomePayload{Email: author})
	})
	if err != nil {
		return err
	}

	loc, err := c.URL("notes.list", nil)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, loc)
}

func (h *notesHandler) attach(c runway.Context, p noteParams) error {
	file, header, err := c.Request().FormFile("file")
	if err != nil {
		return runway.ErrBadRequest("file is required", runway.WithError(err))
	}
	defer file.Close()

	info, err := h.files.Put(c, file, header.Size, storage.WithPrefix("notes"))
	if err != nil {
		return err
	}
	tag, err := h.pool.Exec(c, `UPDATE notes SET attachment = $1 WHERE id = $2`, info.Key, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return runway.ErrNotFound("note not found")
	}
	return c.JSON(http.StatusCreated, info)
}

func (h *notesHandler) download(c runway.Context, p noteParams) error {
	var key string
	err := h.pool.QueryRow(c, `SELECT coalesce(attachment, '') FROM notes WHERE id = $1`, p.ID).Scan(&key)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if key == "" {
		return runway.ErrNotFound("attachment not found")
	}

	url, err := h.files.URL(c, key)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, url)
}

type accountHandler struct{}

func (accountHandler) Routes(r runway.Router) {
	r.POST("/login", func(c runway.Context) error {
		email := strings.TrimSpace(c.Request().FormValue("email"))
		if email == "" {
			return runway.ErrUnprocessable("email is required")
		}
		middlewares.GetSession(c).Authenticate(email)
		return c.NoContent(http.StatusNoContent)
	})
	r.POST("/logout", func(c runway.Context) error {
		middlewares.GetSession(c).Destroy()
		return c.NoContent(http.StatusNoContent)
	})
}

func requireUser(next runway.HandlerFunc) runway.HandlerFunc {
	return func(c runway.Context) error {
		if s := middlewares.GetSession(c); s == nil || !s.IsAuthenticated() {
			return runway.ErrUnauthorized("sign in first")
		}
		return next(c)
	}
}

func welcomeTask(m *mailer.Mailer) queue.TaskFunc[welcomePayload] {
	return func(ctx context.Context, p welcomePayload) error {
		return m.Send(ctx, mailer.Message{
			To:       []string{p.Email},
			Subject:  "Your first note",
			Markdown: "Thanks for writing your first note.\n\nYou can attach files to it from the notes page.",
		})
	}
}
