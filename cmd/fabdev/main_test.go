/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"bytes"
	reqContext "context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-devtools-go/pkg/common/providers/fab/mocks"
	mspctx "github.com/hyperledger/fabric-devtools-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/context"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
	"github.com/hyperledger/fabric-devtools-go/pkg/msp"
	"github.com/hyperledger/fabric-devtools-go/pkg/msp/test/mockmsp"
)

const (
	profilePath = "/network/profile.yaml"
	walletPath  = "/wallet"
	peer0       = "peer0.org1.example.com"
	peer1       = "peer0.org2.example.com"
	testTxnID   = fab.TransactionID("c0ffee")
)

const profile = `
name: test-network
client:
  organization: Org1
organizations:
  Org1:
    mspid: Org1MSP
    peers:
      - peer0.org1.example.com
    certificateAuthorities:
      - ca.org1.example.com
  Org2:
    mspid: Org2MSP
    peers:
      - peer0.org2.example.com
peers:
  peer0.org1.example.com:
    url: grpc://localhost:7051
  peer0.org2.example.com:
    url: grpc://localhost:9051
certificateAuthorities:
  ca.org1.example.com:
    url: http://localhost:7054
`

type testEnv struct {
	app     *app
	fs      afero.Fs
	network *mocks.MockNetwork
	ca      *mocks.MockCAClient
	ctrl    *gomock.Controller
}

func newTestEnv(t *testing.T) *testEnv {
	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetwork(ctrl)
	ca := mocks.NewMockCAClient(ctrl)
	ca.EXPECT().CAName().Return("ca.org1.example.com").AnyTimes()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, profilePath, []byte(profile), 0644))

	wallet, err := msp.NewFileSystemWallet(fs, walletPath)
	require.NoError(t, err)
	wid, err := mockmsp.NewWalletIdentity("Org1MSP", "admin")
	require.NoError(t, err)
	require.NoError(t, wallet.Put("admin", wid))

	caFactory := func(cfg *config.NetworkConfig) (fab.CAClient, error) { return ca, nil }
	a := newApp(fs,
		context.WithNetworkFactory(func(cfg *config.NetworkConfig, signer mspctx.SigningIdentity) (fab.Network, error) {
			return network, nil
		}),
		context.WithCAClientFactory(caFactory),
	)
	a.caFactory = caFactory

	return &testEnv{app: a, fs: fs, network: network, ca: ca, ctrl: ctrl}
}

// connected expects one session to be opened and closed
func (e *testEnv) connected() {
	e.network.EXPECT().Close().Return(nil)
}

func (e *testEnv) run(args ...string) (string, error) {
	root := newRootCmd(e.app)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs(append([]string{"--config", profilePath, "--wallet", walletPath}, args...))
	err := root.ExecuteContext(reqContext.Background())
	return out.String(), err
}

func chaincodes(nameVersions ...string) []*pb.ChaincodeInfo {
	var infos []*pb.ChaincodeInfo
	for i := 0; i+1 < len(nameVersions); i += 2 {
		infos = append(infos, &pb.ChaincodeInfo{Name: nameVersions[i], Version: nameVersions[i+1]})
	}
	return infos
}

func TestTopology(t *testing.T) {
	env := newTestEnv(t)
	env.connected()

	env.network.EXPECT().Peers().Return([]string{peer1, peer0}).AnyTimes()
	env.network.EXPECT().QueryChannels(gomock.Any(), peer0).Return([]string{"chB", "chA"}, nil).Times(1)
	env.network.EXPECT().QueryChannels(gomock.Any(), peer1).Return([]string{"chB"}, nil).Times(1)
	env.network.EXPECT().ChannelOrderers(gomock.Any(), peer0, "chA").Return([]string{"orderer.example.com"}, nil).Times(1)
	env.network.EXPECT().ChannelOrderers(gomock.Any(), peer0, "chB").Return([]string{"orderer.example.com"}, nil).Times(1)
	env.network.EXPECT().ChannelOrderers(gomock.Any(), peer1, "chB").Return([]string{"orderer.example.com"}, nil).Times(1)

	out, err := env.run("topology")
	require.NoError(t, err)
	assert.Equal(t, `Peers:
  peer0.org1.example.com: chA, chB
  peer0.org2.example.com: chB
Channels:
  chA: peer0.org1.example.com
  chB: peer0.org1.example.com, peer0.org2.example.com
Orderers:
  orderer.example.com
`, out)
}

func TestTopologyDiscoveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.connected()

	env.network.EXPECT().Peers().Return([]string{peer0}).AnyTimes()
	env.network.EXPECT().QueryChannels(gomock.Any(), peer0).Return(nil, errors.New("connection refused"))

	_, err := env.run("topology")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.DiscoveryFailedError))
}

func TestChannelCommands(t *testing.T) {
	env := newTestEnv(t)
	env.connected()
	env.network.EXPECT().QueryChannels(gomock.Any(), peer0).Return([]string{"chB", "chA"}, nil)

	out, err := env.run("channel", "list", "--peer", peer0)
	require.NoError(t, err)
	assert.Equal(t, "chA\nchB\n", out)

	_, err = env.run("channel", "list")
	assert.EqualError(t, err, "--peer is required")

	_, err = env.run("channel", "orgs")
	assert.EqualError(t, err, "--channel is required")
}

func TestChaincodeList(t *testing.T) {
	env := newTestEnv(t)
	env.connected()

	env.network.EXPECT().Peers().Return([]string{peer0}).AnyTimes()
	env.network.EXPECT().QueryChannels(gomock.Any(), peer0).Return([]string{"chA", "chB"}, nil)
	env.network.EXPECT().QueryInstantiatedChaincodes(gomock.Any(), "chA").Return(chaincodes("cc1", "1.0"), nil)
	env.network.EXPECT().QueryInstantiatedChaincodes(gomock.Any(), "chB").Return(chaincodes("cc1", "1.0", "cc2", "3.0"), nil)

	out, err := env.run("chaincode", "list")
	require.NoError(t, err)
	assert.Equal(t, "CHAINCODE  CHANNEL\ncc1@1.0    chA\ncc2@3.0    chB\n", out)

	env.connected()
	env.network.EXPECT().QueryInstantiatedChaincodes(gomock.Any(), "chB").Return(chaincodes("cc2", "3.0"), nil)
	out, err = env.run("cc", "ls", "--channel", "chB")
	require.NoError(t, err)
	assert.Contains(t, out, "cc2@3.0    chB")
	assert.NotContains(t, out, "cc1")
}

func TestChaincodeInstalled(t *testing.T) {
	env := newTestEnv(t)
	env.connected()
	env.network.EXPECT().QueryInstalledChaincodes(gomock.Any(), peer0).Return(chaincodes("cc1", "1.0", "cc1", "1.1", "cc2", "3.0"), nil)

	out, err := env.run("chaincode", "installed", "--peer", peer0)
	require.NoError(t, err)
	assert.Equal(t, "cc1: 1.0, 1.1\ncc2: 3.0\n", out)

	env.connected()
	env.network.EXPECT().QueryInstalledChaincodes(gomock.Any(), peer1).Return(nil, errors.New("access denied for [getinstalledchaincodes]"))
	out, err = env.run("chaincode", "installed", "--peer", peer1)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestChaincodeInstall(t *testing.T) {
	env := newTestEnv(t)
	env.connected()
	require.NoError(t, afero.WriteFile(env.fs, "/packages/cc3.cds", []byte("cds"), 0644))

	env.network.EXPECT().SendInstallProposal(gomock.Any(), peer0, []byte("cds")).Return(&fab.TransactionProposalResponse{
		Endorser:         peer0,
		Status:           200,
		ProposalResponse: &pb.ProposalResponse{Response: &pb.Response{Status: 200}},
	}, nil)

	out, err := env.run("chaincode", "install", "--peer", peer0, "--package", "/packages/cc3.cds")
	require.NoError(t, err)
	assert.Equal(t, "Installed /packages/cc3.cds on peer0.org1.example.com\n", out)

	_, err = env.run("chaincode", "install", "--peer", peer0)
	assert.EqualError(t, err, "--peer and --package are required")
}

func TestChaincodeInstantiate(t *testing.T) {
	env := newTestEnv(t)
	env.connected()
	handler := mocks.NewMockCommitHandler(env.ctrl)
	metricsFile := filepath.Join(t.TempDir(), "fabdev.prom")

	outcome := &fab.ProposalOutcome{
		Proposal: &fab.TransactionProposal{TxnID: testTxnID, Proposal: &pb.Proposal{}},
		Responses: []*fab.TransactionProposalResponse{{
			Endorser:         peer0,
			Status:           200,
			ProposalResponse: &pb.ProposalResponse{Response: &pb.Response{Status: 200, Payload: []byte("initialized")}},
		}},
	}

	env.network.EXPECT().QueryInstantiatedChaincodes(gomock.Any(), "chA").Return(nil, nil)
	env.network.EXPECT().SendProposal(gomock.Any(), fab.InstantiateProposal, "chA", fab.ChaincodeProposalRequest{
		Name:    "cc3",
		Version: "1.0",
		Fcn:     "init",
		Args:    [][]byte{[]byte("a"), []byte("b")},
	}).Return(outcome, nil)
	env.network.EXPECT().ValidateResponses(outcome.Responses).Return(outcome.Responses, nil, nil)
	env.network.EXPECT().CreateCommitEventHandler(testTxnID, "chA", fab.CommitHandlerOptions{
		Timeout: 30 * time.Second,
		Peers:   []string{peer0},
	}).Return(handler, nil)
	handler.EXPECT().StartListening(gomock.Any()).Return(nil)
	env.network.EXPECT().SendTransaction(gomock.Any(), "chA", outcome).Return(&fab.TransactionResponse{Status: common.Status_SUCCESS}, nil)
	handler.EXPECT().Wait(gomock.Any()).Return(pb.TxValidationCode_VALID, nil)
	handler.EXPECT().Cancel().Times(1)

	out, err := env.run("--metrics-file", metricsFile, "chaincode", "instantiate",
		"--channel", "chA", "--name", "cc3", "--version", "1.0", "--fcn", "init", "--args", "a,b",
		"--event-peers", peer0, "--commit-timeout", "30s")
	require.NoError(t, err)
	assert.Equal(t, "cc3@1.0 committed on chA\ninitialized\n", out)

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `fabdev_transaction_submissions{kind="instantiate",outcome="committed"} 1`)
}

func TestChaincodeUpgradeNotInstantiated(t *testing.T) {
	env := newTestEnv(t)
	env.connected()
	env.network.EXPECT().QueryInstantiatedChaincodes(gomock.Any(), "chA").Return(chaincodes("cc2", "1.0"), nil)

	_, err := env.run("chaincode", "upgrade", "--channel", "chA", "--name", "cc1", "--version", "2.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.NotPreviouslyInstantiatedError))

	_, err = env.run("chaincode", "upgrade", "--channel", "chA", "--name", "cc1")
	assert.EqualError(t, err, "--channel, --name and --version are required")
}

func TestChaincodeQuery(t *testing.T) {
	env := newTestEnv(t)
	env.connected()

	outcome := &fab.ProposalOutcome{
		Proposal: &fab.TransactionProposal{TxnID: testTxnID, Proposal: &pb.Proposal{}},
		Responses: []*fab.TransactionProposalResponse{{
			Endorser:         peer0,
			Status:           200,
			ProposalResponse: &pb.ProposalResponse{Response: &pb.Response{Status: 200, Payload: []byte(`{"make":"Toyota"}`)}},
		}},
	}
	env.network.EXPECT().SendProposal(gomock.Any(), fab.InvokeProposal, "chA", fab.ChaincodeProposalRequest{
		Name: "fabcar",
		Fcn:  "queryCar",
		Args: [][]byte{[]byte("CAR0")},
	}).Return(outcome, nil)
	env.network.EXPECT().ValidateResponses(outcome.Responses).Return(outcome.Responses, nil, nil)

	out, err := env.run("chaincode", "query", "--channel", "chA", "--name", "fabcar", "--fcn", "queryCar", "--args", "CAR0")
	require.NoError(t, err)
	assert.Equal(t, "{\"make\":\"Toyota\"}\n", out)
}

func TestChaincodeMetadataLegacy(t *testing.T) {
	env := newTestEnv(t)
	env.connected()

	outcome := &fab.ProposalOutcome{
		Proposal: &fab.TransactionProposal{TxnID: testTxnID, Proposal: &pb.Proposal{}},
		Responses: []*fab.TransactionProposalResponse{{
			Endorser:         peer0,
			Status:           500,
			ProposalResponse: &pb.ProposalResponse{Response: &pb.Response{Status: 500, Message: "Invalid invoke function name"}},
		}},
	}
	env.network.EXPECT().SendProposal(gomock.Any(), fab.InvokeProposal, "chA", gomock.Any()).Return(outcome, nil)
	env.network.EXPECT().ValidateResponses(outcome.Responses).Return(nil, outcome.Responses, errors.New("no valid proposal responses received"))

	out, err := env.run("chaincode", "metadata", "--channel", "chA", "--name", "marbles")
	require.NoError(t, err)
	assert.Equal(t, "marbles provides no contract metadata\n", out)
}

func TestIdentityEnroll(t *testing.T) {
	env := newTestEnv(t)
	env.ca.EXPECT().Enroll(gomock.Any(), "user1", "user1pw").Return(&mspctx.Enrollment{
		Certificate: []byte("cert"),
		PrivateKey:  []byte("key"),
	}, nil)

	out, err := env.run("identity", "enroll", "--id", "user1", "--secret", "user1pw", "--label", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Enrolled user1 as alice\n", out)

	wallet, err := msp.NewFileSystemWallet(env.fs, walletPath)
	require.NoError(t, err)
	id, err := wallet.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "Org1MSP", id.MSPID)
	assert.Equal(t, []byte("cert"), id.Certificate)

	_, err = env.run("identity", "enroll", "--id", "user1")
	assert.EqualError(t, err, "--id and --secret are required")
}

func TestIdentityRegister(t *testing.T) {
	env := newTestEnv(t)
	env.connected()
	env.ca.EXPECT().Register(gomock.Any(), &fab.RegistrationRequest{
		Name:        "user2",
		Type:        "client",
		Affiliation: "org1.department1",
	}, gomock.Any()).Return("s3cret", nil)

	out, err := env.run("identity", "register", "--id", "user2", "--affiliation", "org1.department1")
	require.NoError(t, err)
	assert.Equal(t, "Registered user2 with secret s3cret\n", out)
}

func TestIdentityCAs(t *testing.T) {
	env := newTestEnv(t)
	env.connected()

	out, err := env.run("identity", "cas")
	require.NoError(t, err)
	assert.Equal(t, "* ca.org1.example.com\n", out)
}

func TestConnectionErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("--identity", "nobody", "channel", "list", "--peer", peer0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading identity [nobody] from wallet failed")
	assert.True(t, errors.Is(err, mspctx.ErrUserNotFound))

	_, err = env.run("--config", "/missing.yaml", "topology")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading connection profile failed")

	_, err = env.run("--log-level", "verbose", "topology")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --log-level")
}
