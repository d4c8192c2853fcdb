// Package blockchain_listener mantém o registro interno de posse em sincronia
// com a Solana: NFTs liberados da custódia podem trocar de carteira fora do
// marketplace, e o dono interno precisa refletir a realidade on-chain para
// que as checagens de autorização (dono atual) continuem corretas.
package blockchain_listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"github.com/ferreirogomes/galeria/services"
	"github.com/ferreirogomes/galeria/storage"
)

// BlockchainListener escuta eventos na Solana e reconcilia o banco interno.
type BlockchainListener struct {
	RPCClient *rpc.Client
	WSURL     string
	DB        storage.Store
	FeePayer  solana.PrivateKey
	Logger    *zap.SugaredLogger
}

// NewBlockchainListener cria uma nova instância do listener.
func NewBlockchainListener(rpcEndpoint, wsEndpoint string, db storage.Store, feePayerKeyBase58 string, logger *zap.SugaredLogger) (*BlockchainListener, error) {
	feePayer, err := solana.PrivateKeyFromBase58(feePayerKeyBase58)
	if err != nil {
		return nil, err
	}
	return &BlockchainListener{
		RPCClient: rpc.New(rpcEndpoint),
		WSURL:     wsEndpoint,
		DB:        db,
		FeePayer:  feePayer,
		Logger:    logger,
	}, nil
}

// StartListening conecta ao WebSocket e processa transações até o contexto
// ser cancelado. Erros de conexão são tolerados com espera e reconexão;
// depois da subida o listener nunca derruba o processo.
func (l *BlockchainListener) StartListening(ctx context.Context) {
	for {
		if err := l.listenOnce(ctx); err != nil {
			l.Logger.Warnw("listener da blockchain desconectado", "erro", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// listenOnce assina os logs de toda transação que mencione o Fee Payer. Como
// o Fee Payer paga e assina todas as transações do marketplace e é signatário
// das liberações de custódia, essa assinatura cobre os movimentos que nos
// interessam sem assinar o firehose inteiro da rede.
func (l *BlockchainListener) listenOnce(ctx context.Context) error {
	wsClient, err := ws.Connect(ctx, l.WSURL)
	if err != nil {
		return err
	}
	defer wsClient.Close()

	sub, err := wsClient.LogsSubscribeMentions(
		l.FeePayer.PublicKey(),
		rpc.CommitmentFinalized,
	)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	l.Logger.Info("listener da blockchain conectado")
	for {
		got, err := sub.Recv(ctx)
		if err != nil {
			return err
		}
		if got.Value.Err != nil {
			l.Logger.Debugw("transação on-chain falhou", "assinatura", got.Value.Signature.String())
			continue
		}
		l.ProcessTransaction(ctx, got.Value.Signature)
	}
}

// ProcessTransaction busca a forma jsonParsed de uma transação e reconcilia o
// DB a partir das instruções SPL de transferência, tanto as de topo quanto as
// internas (CPI).
func (l *BlockchainListener) ProcessTransaction(ctx context.Context, signature solana.Signature) {
	txResp, err := l.RPCClient.GetParsedTransaction(ctx, signature, &rpc.GetParsedTransactionOpts{
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		l.Logger.Warnw("falha ao obter detalhes da transação", "assinatura", signature.String(), "erro", err)
		return
	}
	if txResp == nil || txResp.Transaction == nil || txResp.Meta == nil {
		return
	}

	for _, ix := range txResp.Transaction.Message.Instructions {
		l.processInstruction(ctx, signature, ix)
	}
	for _, inner := range txResp.Meta.InnerInstructions {
		for _, ix := range inner.Instructions {
			l.processInstruction(ctx, signature, ix)
		}
	}
}

func (l *BlockchainListener) processInstruction(ctx context.Context, signature solana.Signature, ix *rpc.ParsedInstruction) {
	if ix == nil || !ix.ProgramId.Equals(token.ProgramID) || ix.Parsed == nil {
		return
	}
	info, ok := instructionInfo(ix.Parsed)
	if !ok {
		return
	}
	switch info.InstructionType {
	case "transfer", "transferChecked":
		l.handleTransfer(ctx, signature, info.Info)
	}
}

// instructionInfo extrai o tipo e os campos de uma instrução jsonParsed. O
// envelope só expõe o conteúdo via JSON, então a extração é um round-trip.
func instructionInfo(env *rpc.InstructionInfoEnvelope) (*rpc.InstructionInfo, bool) {
	raw, err := json.Marshal(env)
	if err != nil || len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var info rpc.InstructionInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, false
	}
	return &info, true
}

// handleTransfer resolve a conta de token de destino de uma transferência SPL
// para descobrir o mint e a carteira do novo detentor, e reconcilia o banco.
func (l *BlockchainListener) handleTransfer(ctx context.Context, signature solana.Signature, info map[string]interface{}) {
	destination, _ := info["destination"].(string)
	if destination == "" {
		return
	}
	destPubKey, err := solana.PublicKeyFromBase58(destination)
	if err != nil {
		return
	}

	destInfo, err := l.RPCClient.GetAccountInfo(ctx, destPubKey)
	if err != nil {
		l.Logger.Warnw("falha ao obter conta de destino", "conta", destination, "erro", err)
		return
	}
	destAccount, err := services.DecodeTokenAccount(destInfo.Value.Data.GetBinary())
	if err != nil {
		l.Logger.Warnw("falha ao decodificar conta de destino", "conta", destination, "erro", err)
		return
	}

	if err := l.reconcile(signature, destAccount.Mint.String(), destAccount.Owner.String()); err != nil {
		l.Logger.Warnw("falha ao reconciliar transferência", "assinatura", signature.String(), "erro", err)
	}
}

// reconcile atualiza o dono interno de um token cujo NFT mudou de carteira
// on-chain. Um anúncio ainda ativo cujo vendedor perdeu a posse é desativado:
// o invariante vendedor == dono atual deixou de valer e o anúncio não pode
// mais ser honrado. Transferências para a própria custódia já foram
// registradas pela compra e são ignoradas.
func (l *BlockchainListener) reconcile(signature solana.Signature, mintAddress, destOwner string) error {
	if destOwner == l.FeePayer.PublicKey().String() {
		return nil
	}

	err := l.DB.Transact(func(tx storage.Store) error {
		internalToken, found, err := tx.GetTokenByMintAddress(mintAddress)
		if err != nil {
			return err
		}
		if !found {
			// Mint desconhecido: não é um token do marketplace.
			return nil
		}

		listing, hasListing, err := tx.GetListing(internalToken.ID)
		if err != nil {
			return err
		}
		if hasListing && listing.Active {
			if err := tx.DeactivateListing(internalToken.ID, time.Now()); err != nil {
				return err
			}
			l.Logger.Warnw("anúncio desativado: token saiu da posse do vendedor fora do marketplace",
				"token_id", internalToken.ID, "assinatura", signature.String())
		}

		newOwner, foundOwner, err := tx.GetAccountBySolanaPubKey(destOwner)
		if err != nil {
			return err
		}
		if !foundOwner {
			l.Logger.Infow("dono on-chain sem conta interna; posse segue rastreada só pela carteira",
				"token_id", internalToken.ID, "carteira", destOwner)
			return nil
		}
		return tx.UpdateTokenOwner(internalToken.ID, newOwner.ID)
	})
	if err != nil {
		return err
	}
	l.Logger.Infow("transferência on-chain reconciliada", "mint", mintAddress, "assinatura", signature.String())
	return nil
}
