package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/clinio/clinio_backend/internal/repository"
	"github.com/clinio/clinio_backend/pkg/email"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc    fx.Lifecycle
	NC    *nats.Conn
	Store repository.Store
	Email *email.Client
}

func RegisterWorkers(p WorkerParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			startPayoutWorker(p.NC, p.Store, p.Email)
			startAuditWorker(p.NC)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain handled by ProvideNatsClient
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// payout_worker
// ---------------------------------------------------------------------------

// startPayoutWorker emails the beneficiary when one of their commissions is
// marked as paid. Subject carries the commission id, payload the clinic id.
func startPayoutWorker(nc *nats.Conn, store repository.Store, emailCli *email.Client) {
	_, err := nc.Subscribe("clinio.commission.paid.*", func(msg *nats.Msg) {
		parts := strings.Split(msg.Subject, ".")
		if len(parts) < 4 {
			return
		}
		commID, err := uuid.Parse(parts[3])
		if err != nil {
			return
		}
		clinicID, err := uuid.Parse(strings.TrimSpace(string(msg.Data)))
		if err != nil {
			return
		}

		ctx := context.Background()

		comm, err := store.Commissions().GetByID(ctx, clinicID, commID)
		if err != nil {
			slog.Warn("payout_worker: commission not found", "id", commID, "err", err)
			return
		}

		staff, err := store.Staff().GetByID(ctx, clinicID, comm.BeneficiaryID)
		if err != nil {
			slog.Warn("payout_worker: beneficiary not found", "id", comm.BeneficiaryID, "err", err)
			return
		}
		if staff.Email == "" {
			slog.Debug("payout_worker: beneficiary has no email", "id", staff.ID)
			return
		}

		clinicName := ""
		if clinic, err := store.Clinics().GetByID(ctx, clinicID); err == nil {
			clinicName = clinic.Name
		}

		m := email.BuildPayoutNoticeEmail(email.PayoutEmailData{
			StaffName:  staff.Name,
			Email:      staff.Email,
			ClinicName: clinicName,
			Procedure:  comm.Procedure,
			Amount:     comm.Amount,
		})
		if err := emailCli.Send(ctx, m); err != nil {
			slog.Warn("payout_worker: send payout notice failed", "commission_id", commID, "err", err)
		}
	})
	if err != nil {
		slog.Error("payout_worker: subscribe commission.paid failed", "err", err)
	}

	slog.Info("payout_worker: started")
}

// ---------------------------------------------------------------------------
// audit_worker
// ---------------------------------------------------------------------------

// startAuditWorker writes a log trail for payment lifecycle events.
func startAuditWorker(nc *nats.Conn) {
	log := func(event string) func(msg *nats.Msg) {
		return func(msg *nats.Msg) {
			parts := strings.Split(msg.Subject, ".")
			if len(parts) < 4 {
				return
			}
			slog.Info("audit: "+event,
				"id", parts[3],
				"clinic_id", strings.TrimSpace(string(msg.Data)),
			)
		}
	}

	if _, err := nc.Subscribe("clinio.payment.confirmed.*", log("payment confirmed")); err != nil {
		slog.Error("audit_worker: subscribe payment.confirmed failed", "err", err)
	}
	if _, err := nc.Subscribe("clinio.payment.cancelled.*", log("payment cancelled")); err != nil {
		slog.Error("audit_worker: subscribe payment.cancelled failed", "err", err)
	}
	if _, err := nc.Subscribe("clinio.commission.generated.*", log("commission generated")); err != nil {
		slog.Error("audit_worker: subscribe commission.generated failed", "err", err)
	}

	slog.Info("audit_worker: started")
}
