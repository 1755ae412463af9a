package ledger

import (
	"context"
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/crowdfund/pkg/ledger/account"
	"github.com/code-payments/crowdfund/pkg/ledger/account/memory"
	"github.com/code-payments/crowdfund/pkg/ledger/account/postgres"
	"github.com/code-payments/crowdfund/pkg/metrics"
	"github.com/code-payments/crowdfund/pkg/retry"
	"github.com/code-payments/crowdfund/pkg/retry/backoff"
	"github.com/code-payments/crowdfund/pkg/solana"
	"github.com/code-payments/crowdfund/pkg/solana/system"

	pg "github.com/code-payments/crowdfund/pkg/database/postgres"
	sync_util "github.com/code-payments/crowdfund/pkg/sync"
)

var (
	ErrAccountNotFound = account.ErrAccountNotFound
	ErrNoInstructions  = errors.New("no instructions to execute")
)

// Ledger is a local execution environment for Solana programs. It loads the
// accounts a transaction references, runs the transaction's instructions
// against them as a single atomic unit and persists the result.
type Ledger struct {
	log   *logrus.Entry
	conf  *conf
	store account.Store
	locks *sync_util.StripedLock

	programsMu sync.RWMutex
	programs   map[string]Program
}

// New returns a Ledger backed by the provided account store, with the native
// system program registered.
func New(store account.Store, configProvider ConfigProvider) *Ledger {
	conf := configProvider()

	l := &Ledger{
		log:      logrus.StandardLogger().WithField("type", "ledger"),
		conf:     conf,
		store:    store,
		locks:    sync_util.NewStripedLock(uint(conf.lockStripes.Get(context.Background()))),
		programs: make(map[string]Program),
	}
	l.RegisterProgram(system.ProgramKey[:], newSystemProgram())

	return l
}

// NewInMemoryLedger returns a Ledger whose accounts live in memory
func NewInMemoryLedger(configProvider ConfigProvider) *Ledger {
	return New(memory.New(), configProvider)
}

// NewPostgresLedger returns a Ledger whose accounts are persisted to postgres
func NewPostgresLedger(dbConfig *pg.Config, configProvider ConfigProvider) (*Ledger, error) {
	db, err := pg.Open(dbConfig)
	if err != nil {
		return nil, err
	}
	return New(postgres.NewFromSqlx(db), configProvider), nil
}

// RegisterProgram makes a program invocable at programID, replacing any
// program previously registered there.
func (l *Ledger) RegisterProgram(programID ed25519.PublicKey, program Program) {
	l.programsMu.Lock()
	l.programs[base58.Encode(programID)] = program
	l.programsMu.Unlock()

	l.log.WithField("program", base58.Encode(programID)).Debug("program registered")
}

// Execute runs the instructions as one transaction signed by signers. Either
// every instruction succeeds and all account changes are committed, or none
// of them are. Failures of the transaction itself are returned as a
// *solana.TransactionError.
func (l *Ledger) Execute(ctx context.Context, signers []ed25519.PrivateKey, instructions ...solana.Instruction) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Execute")
	defer tracer.End()

	start := time.Now()

	log := l.log.WithFields(logrus.Fields{
		"method":       "Execute",
		"instructions": len(instructions),
		"signers":      signerAddresses(signers),
	})

	if len(instructions) == 0 {
		return ErrNoInstructions
	}

	keys := distinctKeys(instructions)
	unlock := l.locks.LockAll(keyBytes(instructions)...)
	defer unlock()

	signerSet := make(map[string]struct{}, len(signers))
	for _, signer := range signers {
		signerSet[base58.Encode(signer.Public().(ed25519.PublicKey))] = struct{}{}
	}

	l.programsMu.RLock()
	programs := make(map[string]Program, len(l.programs))
	for k, v := range l.programs {
		programs[k] = v
	}
	l.programsMu.RUnlock()

	rent := l.Rent(ctx)

	attempts, err := l.withCommitRetries(ctx, func() error {
		loaded, err := l.load(ctx, keys)
		if err != nil {
			return err
		}

		inv, err := newInvocation(keys, loaded, instructions, signerSet)
		if err != nil {
			return err
		}

		if err := inv.run(programs, instructions, rent); err != nil {
			return err
		}

		changed := inv.changed()
		if len(changed) == 0 {
			return nil
		}
		return l.store.SaveAll(ctx, changed...)
	})

	recordExecuteEvent(ctx, len(instructions), attempts, time.Since(start), err)

	if err != nil {
		tracer.OnError(err)

		var txnErr *solana.TransactionError
		if errors.As(err, &txnErr) {
			log.WithError(err).Debug("transaction failed")
			return err
		}

		log.WithError(err).Warn("failure executing transaction")
		return errors.Wrap(err, "error executing transaction")
	}

	log.WithField("attempts", attempts).Debug("transaction executed")
	return nil
}

// GetAccount returns the current state of an account. ErrAccountNotFound is
// returned if the account was never persisted.
func (l *Ledger) GetAccount(ctx context.Context, key ed25519.PublicKey) (*solana.AccountInfo, error) {
	record, err := l.store.Get(ctx, base58.Encode(key))
	if err != nil {
		return nil, err
	}
	return toAccountInfo(record)
}

// GetProgramAccounts returns every account owned by a program, ordered by
// address
func (l *Ledger) GetProgramAccounts(ctx context.Context, program ed25519.PublicKey) ([]*solana.AccountInfo, error) {
	records, err := l.store.GetAllByOwner(ctx, base58.Encode(program))
	if err == account.ErrAccountNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	res := make([]*solana.AccountInfo, len(records))
	for i, record := range records {
		res[i], err = toAccountInfo(record)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// SetAccount overwrites an account's state outside of any transaction. It's
// used to seed genesis state and to model accounts managed by external
// collaborators.
func (l *Ledger) SetAccount(ctx context.Context, info *solana.AccountInfo) error {
	if len(info.Key) != ed25519.PublicKeySize || len(info.Owner) != ed25519.PublicKeySize {
		return errors.New("account key and owner are required")
	}

	return l.updateAccount(ctx, info.Key, func(record *account.Record) error {
		version := record.Version
		fromAccountInfo(record.Address, info, version).CopyTo(record)
		return nil
	})
}

// Airdrop credits lamports to an account, creating it as a system owned
// account if it doesn't exist.
func (l *Ledger) Airdrop(ctx context.Context, key ed25519.PublicKey, lamports uint64) error {
	return l.updateAccount(ctx, key, func(record *account.Record) error {
		credited, ok := solana.CheckedAdd(record.Lamports, lamports)
		if !ok {
			return errors.New("airdrop overflows account balance")
		}
		record.Lamports = credited
		return nil
	})
}

// Rent returns the rent configuration programs are executed with
func (l *Ledger) Rent(ctx context.Context) solana.Rent {
	rent := solana.Rent{
		LamportsPerByteYear: l.conf.rentLamportsPerByteYear.Get(ctx),
		ExemptionThreshold:  l.conf.rentExemptionThreshold.Get(ctx),
		BurnPercent:         solana.DefaultBurnPercent,
	}

	burnPercent := l.conf.rentBurnPercent.Get(ctx)
	if burnPercent <= 100 {
		rent.BurnPercent = uint8(burnPercent)
	} else {
		l.log.WithField("burn_percent", burnPercent).Warn("ignoring invalid rent burn percent")
	}

	var validated solana.Rent
	if err := validated.Unmarshal(rent.Marshal()); err != nil {
		l.log.WithError(err).Warn("invalid rent configuration, using defaults")
		return solana.DefaultRent()
	}
	return rent
}

func (l *Ledger) updateAccount(ctx context.Context, key ed25519.PublicKey, fn func(record *account.Record) error) error {
	unlock := l.locks.LockAll(key)
	defer unlock()

	address := base58.Encode(key)
	_, err := l.withCommitRetries(ctx, func() error {
		loaded, err := l.load(ctx, []string{address})
		if err != nil {
			return err
		}

		record := loaded[address]
		if err := fn(record); err != nil {
			return err
		}
		return l.store.SaveAll(ctx, record)
	})
	return err
}

func (l *Ledger) load(ctx context.Context, keys []string) (map[string]*account.Record, error) {
	loaded := make(map[string]*account.Record, len(keys))
	for _, key := range keys {
		record, err := l.store.Get(ctx, key)
		if err == account.ErrAccountNotFound {
			record = emptyRecord(key)
		} else if err != nil {
			return nil, errors.Wrapf(err, "error loading account %s", key)
		}
		loaded[key] = record
	}
	return loaded, nil
}

func (l *Ledger) withCommitRetries(ctx context.Context, action retry.Action) (uint, error) {
	maxAttempts := l.conf.maxCommitAttempts.Get(ctx)
	if maxAttempts == 0 {
		maxAttempts = 1
	}
	commitBackoff := l.conf.commitBackoff.Get(ctx)

	return retry.Retry(
		action,
		retry.RetriableErrorFunc(isCommitConflict),
		retry.Context(ctx),
		retry.Limit(uint(maxAttempts)),
		retry.BackoffWithJitter(backoff.BinaryExponential(commitBackoff), 10*commitBackoff, 0.1),
	)
}

// isCommitConflict reports whether a concurrent writer beat this attempt to
// the store, in which case the attempt can be replayed from a fresh load
func isCommitConflict(err error) bool {
	return errors.Is(err, account.ErrStaleVersion) || pg.IsSerializationFailure(err)
}

func keyBytes(instructions []solana.Instruction) [][]byte {
	var res [][]byte
	for _, instruction := range instructions {
		for _, meta := range instruction.Accounts {
			res = append(res, meta.PublicKey)
		}
	}
	return res
}

func signerAddresses(signers []ed25519.PrivateKey) []string {
	res := make([]string, len(signers))
	for i, signer := range signers {
		res[i] = base58.Encode(signer.Public().(ed25519.PublicKey))
	}
	return res
}
