// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// vaultctl drives a covault store from the command line: wallet
// creation, transaction initiation, signature collection, broadcast and
// confirmation tracking, one command per lifecycle step.
package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	flags "github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/ticker"

	"github.com/covault/covault/chain"
	"github.com/covault/covault/internal/cfgutil"
	"github.com/covault/covault/msigscript"
	"github.com/covault/covault/signer"
	"github.com/covault/covault/signer/memsigner"
	"github.com/covault/covault/vault"
	"github.com/covault/covault/vaultdb/ldb"
)

var defaultDataDir = btcutil.AppDataDir("covault", false)

const usageText = `Usage: vaultctl [options] <command> [args]

Commands:
  create-wallet --threshold M --pubkey KEY --user ID [...] --name NAME
  wallet        <walletID>
  transactions  <walletID> [--status STATUS]
  initiate      <walletID> <recipient> <amount>
  digests       <txID>
  sign          <txID> --privkey KEY
  cancel        <txID>
  broadcast     <txID>
  status        <txID>
  watch         <walletID>`

// Flags.
var opts = struct {
	TestNet3       bool   `long:"testnet" description:"Use the test bitcoin network (version 3)"`
	SimNet         bool   `long:"simnet" description:"Use the simulation bitcoin network"`
	RegressionTest bool   `long:"regtest" description:"Use the regression test bitcoin network"`
	DataDir        string `short:"D" long:"datadir" description:"Directory holding the wallet store and logs"`
	DebugLevel     string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`

	RPCConnect string `short:"c" long:"rpcconnect" description:"Hostname[:port] of the bitcoin JSON-RPC node"`
	RPCUser    string `short:"u" long:"rpcuser" description:"JSON-RPC username"`
	RPCPass    string `short:"P" long:"rpcpass" description:"JSON-RPC password"`
	NoTLS      bool   `long:"notls" description:"Disable TLS for the JSON-RPC connection"`

	Threshold int      `short:"m" long:"threshold" description:"Signatures required to spend (create-wallet)"`
	PubKeys   []string `long:"pubkey" description:"Participant compressed public key, hex (repeatable)"`
	Users     []string `long:"user" description:"Participant user id, paired with --pubkey in order (repeatable)"`
	Name      string   `long:"name" description:"Display name of the wallet (create-wallet)"`

	FeeRate  int64         `long:"feerate" description:"Fee rate in sat/vB; 0 uses the node's normal-tier estimate (initiate)"`
	Note     string        `long:"note" description:"Free-form note attached to the transaction (initiate)"`
	Status   string        `long:"status" description:"Filter listed transactions by status (transactions)"`
	PrivKey  string        `long:"privkey" description:"Hex private key used to sign (sign)"`
	Interval time.Duration `long:"interval" description:"Confirmation poll interval (watch)"`
}{
	DataDir:    defaultDataDir,
	DebugLevel: "info",
	Interval:   30 * time.Second,
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// errNoRPC is returned by noChain for every chain-touching command when
// no JSON-RPC node was configured.
var errNoRPC = errors.New("no RPC node configured: set --rpcconnect, " +
	"--rpcuser and --rpcpass")

// noChain stands in for a chain backend when the RPC flags are absent,
// letting purely local commands run without a node.
type noChain struct{}

func (noChain) ListUnspent(string) ([]chain.Utxo, error) {
	return nil, errNoRPC
}

func (noChain) FeeRates() (chain.FeeRates, error) {
	return chain.FeeRates{}, errNoRPC
}

func (noChain) Broadcast([]byte) (string, error) {
	return "", errNoRPC
}

func (noChain) Confirmations(string) (int64, error) {
	return 0, errNoRPC
}

// digestList adapts pre-fetched digests to the signer.Digester contract.
type digestList [][]byte

func (d digestList) InputCount() int { return len(d) }

func (d digestList) InputDigest(i int) ([]byte, error) {
	return d[i], nil
}

// defaultRPCPort maps each supported network to the conventional
// bitcoind JSON-RPC port.
func defaultRPCPort(params *chaincfg.Params) string {
	switch params.Net {
	case chaincfg.TestNet3Params.Net:
		return "18332"
	case chaincfg.RegressionNetParams.Net:
		return "18443"
	case chaincfg.SimNetParams.Net:
		return "18556"
	default:
		return "8332"
	}
}

func activeParams() *chaincfg.Params {
	selected := 0
	params := &chaincfg.MainNetParams
	if opts.TestNet3 {
		selected++
		params = &chaincfg.TestNet3Params
	}
	if opts.SimNet {
		selected++
		params = &chaincfg.SimNetParams
	}
	if opts.RegressionTest {
		selected++
		params = &chaincfg.RegressionNetParams
	}
	if selected > 1 {
		fatalf("Multiple bitcoin networks may not be used simultaneously")
	}
	return params
}

func printJSON(v interface{}) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = usageText
	args, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if len(args) == 0 {
		fatalf("%s", usageText)
	}

	params := activeParams()
	netDir := filepath.Join(opts.DataDir, params.Name)

	initLogRotator(filepath.Join(netDir, "logs", "vaultctl.log"))
	defer logRotator.Close()
	setLogLevels(opts.DebugLevel)

	db, err := ldb.Open(filepath.Join(netDir, "vault.db"))
	if err != nil {
		fatalf("Cannot open wallet store: %v", err)
	}
	defer db.Close()

	var chainBackend chain.Interface = noChain{}
	if opts.RPCConnect != "" {
		rpcConnect, err := cfgutil.NormalizeAddress(
			opts.RPCConnect, defaultRPCPort(params),
		)
		if err != nil {
			fatalf("Invalid RPC network address %q: %v",
				opts.RPCConnect, err)
		}

		client, err := chain.NewRPCClient(chain.RPCConfig{
			Host:       rpcConnect,
			User:       opts.RPCUser,
			Pass:       opts.RPCPass,
			DisableTLS: opts.NoTLS,
		}, params)
		if err != nil {
			fatalf("Cannot connect to RPC node: %v", err)
		}
		defer client.Shutdown()
		chainBackend = client
	}

	mgr := vault.New(db, msigscript.NewEngine(params), chainBackend, params)

	if err := dispatch(mgr, chainBackend, args[0], args[1:]); err != nil {
		fatalf("%v", err)
	}
}

func dispatch(mgr *vault.Manager, chainBackend chain.Interface,
	command string, args []string) error {

	switch command {
	case "create-wallet":
		return createWallet(mgr, args)
	case "wallet":
		return showWallet(mgr, args)
	case "transactions":
		return listTransactions(mgr, args)
	case "initiate":
		return initiate(mgr, chainBackend, args)
	case "digests":
		return showDigests(mgr, args)
	case "sign":
		return sign(mgr, args)
	case "cancel":
		return cancel(mgr, args)
	case "broadcast":
		return broadcast(mgr, args)
	case "status":
		return status(mgr, args)
	case "watch":
		return watch(mgr, args)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usageText)
	}
}

// oneArg enforces the single positional argument of most commands.
func oneArg(args []string, name string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one argument: <%s>", name)
	}
	return args[0], nil
}

func createWallet(mgr *vault.Manager, args []string) error {
	if len(args) != 0 {
		return errors.New("create-wallet takes no positional arguments")
	}
	if len(opts.PubKeys) == 0 {
		return errors.New("at least one --pubkey is required")
	}
	if len(opts.Users) != len(opts.PubKeys) {
		return fmt.Errorf("got %d --user flags for %d --pubkey flags, "+
			"they must pair up in order", len(opts.Users),
			len(opts.PubKeys))
	}

	participants := make([]vault.Participant, len(opts.PubKeys))
	for i := range participants {
		participants[i] = vault.Participant{
			PubKey: opts.PubKeys[i],
			UserID: opts.Users[i],
		}
	}

	w, err := mgr.CreateWallet(
		opts.Threshold, len(participants), participants, opts.Name,
	)
	if err != nil {
		return err
	}
	return printJSON(w)
}

func showWallet(mgr *vault.Manager, args []string) error {
	walletID, err := oneArg(args, "walletID")
	if err != nil {
		return err
	}
	w, err := mgr.Wallet(walletID)
	if err != nil {
		return err
	}
	return printJSON(w)
}

func listTransactions(mgr *vault.Manager, args []string) error {
	walletID, err := oneArg(args, "walletID")
	if err != nil {
		return err
	}

	var filter *vault.TxStatus
	if opts.Status != "" {
		status, err := vault.ParseStatus(opts.Status)
		if err != nil {
			return err
		}
		filter = &status
	}

	txs, err := mgr.Transactions(walletID, filter)
	if err != nil {
		return err
	}
	return printJSON(txs)
}

func initiate(mgr *vault.Manager, chainBackend chain.Interface,
	args []string) error {

	if len(args) != 3 {
		return errors.New(
			"expected arguments: <walletID> <recipient> <amount>")
	}
	amount, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %v", args[2], err)
	}

	feeRate := opts.FeeRate
	if feeRate == 0 {
		rates, err := chainBackend.FeeRates()
		if err != nil {
			return fmt.Errorf("query fee rates: %v", err)
		}
		feeRate = rates.Normal
		log.Infof("Using node-estimated fee rate of %d sat/vB", feeRate)
	}

	tx, err := mgr.Initiate(args[0], args[1], amount, feeRate, opts.Note)
	if err != nil {
		return err
	}
	return printJSON(tx)
}

func showDigests(mgr *vault.Manager, args []string) error {
	txID, err := oneArg(args, "txID")
	if err != nil {
		return err
	}
	digests, err := mgr.InputDigests(txID)
	if err != nil {
		return err
	}
	for _, digest := range digests {
		fmt.Println(hex.EncodeToString(digest))
	}
	return nil
}

func sign(mgr *vault.Manager, args []string) error {
	txID, err := oneArg(args, "txID")
	if err != nil {
		return err
	}
	if opts.PrivKey == "" {
		return errors.New("--privkey is required to sign")
	}

	creds := memsigner.New()
	pubKey, err := creds.Import("cli", opts.PrivKey)
	if err != nil {
		return err
	}

	digests, err := mgr.InputDigests(txID)
	if err != nil {
		return err
	}
	sigs, err := signer.SignAll(digestList(digests), creds, "cli")
	if err != nil {
		return err
	}

	summary, err := mgr.SubmitSignature(
		txID, hex.EncodeToString(pubKey), sigs,
	)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func cancel(mgr *vault.Manager, args []string) error {
	txID, err := oneArg(args, "txID")
	if err != nil {
		return err
	}
	tx, err := mgr.Cancel(txID)
	if err != nil {
		return err
	}
	return printJSON(tx)
}

func broadcast(mgr *vault.Manager, args []string) error {
	txID, err := oneArg(args, "txID")
	if err != nil {
		return err
	}
	receipt, err := mgr.Broadcast(txID)
	if err != nil {
		return err
	}
	return printJSON(receipt)
}

func status(mgr *vault.Manager, args []string) error {
	txID, err := oneArg(args, "txID")
	if err != nil {
		return err
	}
	summary, err := mgr.Status(txID)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func watch(mgr *vault.Manager, args []string) error {
	walletID, err := oneArg(args, "walletID")
	if err != nil {
		return err
	}

	watcher := vault.NewConfWatcher(
		mgr, walletID, ticker.New(opts.Interval),
	)
	watcher.Start()
	defer watcher.Stop()
	log.Infof("Watching wallet %s every %v, interrupt to stop",
		walletID, opts.Interval)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	log.Infof("Shutting down watcher")
	return nil
}
