package devserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gadibarra/panel-municipal/internal/client"
	"github.com/gadibarra/panel-municipal/internal/config"
	"github.com/gadibarra/panel-municipal/internal/logger"
	"github.com/gadibarra/panel-municipal/internal/tokenstore"
)

// newClient starts s over HTTP and returns a client using the default
// login path list, so login has to probe past /api/auth/login.
func newClient(t *testing.T, s *Server, mutate func(*config.Config)) *client.Client {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	cfg := config.Defaults()
	cfg.APIURL = ts.URL
	cfg.RequestTimeout = config.Duration(5 * time.Second)
	cfg.LoginTimeout = config.Duration(5 * time.Second)
	cfg.ProbeTimeout = config.Duration(2 * time.Second)
	if mutate != nil {
		mutate(cfg)
	}

	store := tokenstore.New(tokenstore.WithLogger(logger.Discard()))
	return client.New(ts.URL,
		client.WithConfig(cfg),
		client.WithStore(store),
		client.WithLogger(logger.Discard()),
	)
}

func TestClient_LoginProbesToServedRoute(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s, nil)

	res := c.Login(context.Background(), client.Credentials{Username: "  admin ", Password: "admin123"})
	if !res.Success {
		t.Fatalf("Login failed: %+v", res)
	}
	if res.Endpoint != "/auth/login" {
		t.Errorf("Endpoint = %q, want /auth/login", res.Endpoint)
	}
	if res.User == nil || res.User.Role != RoleAdmin || res.User.Email != "admin@ibarra.gob.ec" {
		t.Errorf("Unexpected user %+v", res.User)
	}
	if !c.Store().IsAuthenticated() {
		t.Error("Expected the token to be stored")
	}
	if exp, ok := c.Store().ExpiresAt(); !ok || exp.Before(time.Now()) {
		t.Errorf("Expected a future expiry, got %v %v", exp, ok)
	}
}

func TestClient_LoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s, nil)

	res := c.Login(context.Background(), client.Credentials{Username: "admin", Password: "wrong-pass"})
	if res.Success || res.Kind != client.KindUnauthorized || res.Status != http.StatusUnauthorized {
		t.Errorf("Unexpected result %+v", res)
	}
	if c.Store().IsAuthenticated() {
		t.Error("Expected no stored token")
	}
}

func TestClient_LoginNoEndpoint(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s, func(cfg *config.Config) {
		cfg.LoginPaths = []string{"/api/auth/login", "/login"}
	})

	res := c.Login(context.Background(), client.Credentials{Username: "admin", Password: "admin123"})
	if res.Kind != client.KindNoLoginEndpoint {
		t.Errorf("Kind = %q, want %q", res.Kind, client.KindNoLoginEndpoint)
	}
}

func TestClient_ApprovalFlow(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	c := newClient(t, s, nil)
	if res := c.Login(ctx, client.Credentials{Username: "admin", Password: "admin123"}); !res.Success {
		t.Fatalf("Login failed: %+v", res)
	}

	pending := c.PendingProyectos(ctx, 0, 10)
	if !pending.Success || pending.Data.TotalElements != 2 {
		t.Fatalf("Unexpected pending listing %+v", pending)
	}

	approved := c.ApproveProyecto(ctx, pending.Data.Content[0].ID)
	if !approved.Success || approved.Data.Estado != client.EstadoAprobado {
		t.Errorf("Unexpected approval %+v", approved)
	}

	rejected := c.RejectProyecto(ctx, pending.Data.Content[1].ID)
	if !rejected.Success || rejected.Data.Estado != client.EstadoRechazado {
		t.Errorf("Unexpected rejection %+v", rejected)
	}

	again := c.ApproveProyecto(ctx, pending.Data.Content[0].ID)
	if again.Success || again.Kind != client.KindBackend || again.Status != http.StatusConflict {
		t.Errorf("Expected 409 backend refusal, got %+v", again)
	}
	if again.Message != "El proyecto no está pendiente de aprobación" {
		t.Errorf("Message = %q, want backend message", again.Message)
	}
}

func TestClient_RejectWithPost(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	c := newClient(t, s, func(cfg *config.Config) { cfg.RejectMethod = http.MethodPost })
	c.Login(ctx, client.Credentials{Username: "admin", Password: "admin123"})

	if res := c.RejectProyecto(ctx, "2"); !res.Success {
		t.Errorf("POST reject failed: %+v", res)
	}
}

func TestClient_NonAdminForbidden(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	c := newClient(t, s, nil)
	if res := c.Login(ctx, client.Credentials{Username: "funcionario", Password: "funcionario123"}); !res.Success {
		t.Fatalf("Login failed: %+v", res)
	}

	res := c.PendingProyectos(ctx, 0, 10)
	if res.Kind != client.KindForbidden || res.Status != http.StatusForbidden {
		t.Errorf("Unexpected result %+v", res)
	}
	if !c.Store().IsAuthenticated() {
		t.Error("A 403 must keep the session")
	}

	// Non-admin users still reach the shared listings.
	if list := c.ListRequerimientos(ctx, client.ListOptions{}); !list.Success {
		t.Errorf("ListRequerimientos failed: %+v", list)
	}
}

func TestClient_UnauthenticatedReports401(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s, nil)

	res := c.ListProyectos(context.Background(), client.ListOptions{})
	if res.Kind != client.KindUnauthorized {
		t.Errorf("Kind = %q, want unauthorized", res.Kind)
	}
}

func TestClient_CRUDAndSummary(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	c := newClient(t, s, nil)
	c.Login(ctx, client.Credentials{Username: "admin", Password: "admin123"})

	created := c.CreateFeria(ctx, client.FeriaInput{Nombre: "Feria Navideña", Ubicacion: "Parque La Merced"})
	if !created.Success || created.Data.Estado != client.EstadoProgramada {
		t.Fatalf("Unexpected create %+v", created)
	}

	list := c.ListFerias(ctx, client.ListOptions{Estado: client.EstadoProgramada})
	if !list.Success || list.Data.TotalElements != 2 {
		t.Errorf("Unexpected listing %+v", list)
	}

	updated := c.UpdateFeria(ctx, created.Data.ID, client.FeriaInput{Estado: client.EstadoActiva})
	if !updated.Success || updated.Data.Estado != client.EstadoActiva || updated.Data.Nombre != "Feria Navideña" {
		t.Errorf("Unexpected update %+v", updated)
	}

	if del := c.DeleteFeria(ctx, created.Data.ID); !del.Success {
		t.Errorf("Delete failed: %+v", del)
	}
	if got := c.GetFeria(ctx, created.Data.ID); got.Kind != client.KindNotFound {
		t.Errorf("Kind = %q, want not_found", got.Kind)
	}

	sent := c.SendMensaje(ctx, client.MensajeInput{Contenido: "Revisar informe", Destinatario: "funcionario"})
	if !sent.Success {
		t.Fatalf("SendMensaje failed: %+v", sent)
	}
	if read := c.MarkMensajeLeido(ctx, sent.Data.ID); !read.Success || !read.Data.Leido {
		t.Errorf("Unexpected mark-read %+v", read)
	}

	summary := c.Summary(ctx)
	if !summary.Success || summary.Data.TotalProyectos != 5 || summary.Data.MensajesNoLeidos != 2 {
		t.Errorf("Unexpected summary %+v", summary.Data)
	}
}

func TestClient_HealthCheck(t *testing.T) {
	s := newTestServer(t)
	c := newClient(t, s, nil)

	res := c.HealthCheck(context.Background())
	if !res.Success || res.Data.Status != "UP" || res.Data.Path != "/health" {
		t.Errorf("Unexpected health %+v", res)
	}
}

func TestClient_ExpiredSessionIsCleared(t *testing.T) {
	clock := newFakeClock(time.Now())
	s := newTestServer(t, WithClock(clock.now))
	c := newClient(t, s, nil)
	ctx := context.Background()
	c.Login(ctx, client.Credentials{Username: "admin", Password: "admin123"})

	clock.advance(2 * time.Hour)
	res := c.ListProyectos(ctx, client.ListOptions{})
	if res.Kind != client.KindUnauthorized {
		t.Fatalf("Kind = %q, want unauthorized", res.Kind)
	}
	if _, ok := c.Store().Token(); ok {
		t.Error("Expected the 401 to clear the stored token")
	}
}
