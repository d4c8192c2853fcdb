package services

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Ledger é o colaborador externo de posse: cunha tokens de suprimento 1,
// move a posse on-chain e responde consultas de dono/existência. O motor de
// vendas o trata como capacidade pronta; os testes injetam um mock.
type Ledger interface {
	// Mint cunha um novo NFT e retorna o endereço do mint. O NFT nasce sob
	// custódia do marketplace; ownerPubKey fica registrado como beneficiário.
	Mint(ctx context.Context, ownerPubKey string) (string, error)
	// Transfer move o NFT da custódia para a carteira do novo dono.
	Transfer(ctx context.Context, mintAddress, fromPubKey, toPubKey string) error
	// OwnerOf retorna a carteira que detém o NFT on-chain.
	OwnerOf(ctx context.Context, mintAddress string) (string, bool, error)
	// Exists verifica se o mint existe on-chain.
	Exists(ctx context.Context, mintAddress string) (bool, error)
}

// Tamanho em bytes de uma conta de mint SPL.
const mintAccountSize = 82

// SolanaLedgerService implementa Ledger sobre a Solana via RPC. O Fee Payer
// assina e paga todas as transações; enquanto um token está anunciado, a
// unidade fica na ATA custodial do Fee Payer, o que permite liberá-la ao
// comprador sem exigir assinatura do vendedor no momento da venda.
type SolanaLedgerService struct {
	RPCClient *rpc.Client
	FeePayer  solana.PrivateKey
	Logger    *zap.SugaredLogger
}

// NewSolanaLedgerService cria o serviço de integração com a Solana.
func NewSolanaLedgerService(rpcEndpoint, feePayerKeyBase58 string, logger *zap.SugaredLogger) (*SolanaLedgerService, error) {
	feePayer, err := solana.PrivateKeyFromBase58(feePayerKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar chave privada do Fee Payer: %w", err)
	}
	return &SolanaLedgerService{
		RPCClient: rpc.New(rpcEndpoint),
		FeePayer:  feePayer,
		Logger:    logger,
	}, nil
}

// Mint cria a conta de mint (decimais 0), a ATA custodial do Fee Payer e
// cunha exatamente 1 unidade nela.
func (s *SolanaLedgerService) Mint(ctx context.Context, ownerPubKey string) (string, error) {
	if _, err := solana.PublicKeyFromBase58(ownerPubKey); err != nil {
		return "", fmt.Errorf("chave pública do beneficiário inválida: %w", err)
	}

	mintWallet := solana.NewWallet()
	mint := mintWallet.PublicKey()
	payer := s.FeePayer.PublicKey()

	rent, err := s.RPCClient.GetMinimumBalanceForRentExemption(ctx, mintAccountSize, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("falha ao obter isenção de rent: %w", err)
	}

	custodyATA, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	if err != nil {
		return "", fmt.Errorf("falha ao derivar ATA custodial: %w", err)
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			rent,
			mintAccountSize,
			token.ProgramID,
			payer,
			mint,
		).Build(),
		token.NewInitializeMintInstruction(
			0, // decimais: NFT, indivisível
			payer,
			payer,
			mint,
			solana.SysVarRentPubkey,
		).Build(),
		associatedtokenaccount.NewCreateInstruction(
			payer,
			payer,
			mint,
		).Build(),
		token.NewMintToInstruction(
			1,
			mint,
			custodyATA,
			payer,
			nil,
		).Build(),
	}

	if err := s.signAndSend(ctx, instructions, mintWallet.PrivateKey); err != nil {
		return "", fmt.Errorf("falha ao cunhar NFT: %w", err)
	}

	s.Logger.Infow("NFT cunhado na custódia do marketplace",
		"mint", mint.String(), "beneficiario", ownerPubKey)
	return mint.String(), nil
}

// Transfer libera o NFT da ATA custodial para a ATA da carteira de destino,
// criando a ATA de destino se necessário.
func (s *SolanaLedgerService) Transfer(ctx context.Context, mintAddress, fromPubKey, toPubKey string) error {
	mint, err := solana.PublicKeyFromBase58(mintAddress)
	if err != nil {
		return fmt.Errorf("endereço de mint inválido: %w", err)
	}
	to, err := solana.PublicKeyFromBase58(toPubKey)
	if err != nil {
		return fmt.Errorf("chave pública de destino inválida: %w", err)
	}
	payer := s.FeePayer.PublicKey()

	custodyATA, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	if err != nil {
		return fmt.Errorf("falha ao derivar ATA custodial: %w", err)
	}
	toATA, _, err := solana.FindAssociatedTokenAddress(to, mint)
	if err != nil {
		return fmt.Errorf("falha ao derivar ATA de destino: %w", err)
	}

	instructions := []solana.Instruction{}

	// Cria a ATA de destino caso ainda não exista.
	if _, err := s.RPCClient.GetAccountInfo(ctx, toATA); err != nil {
		instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(
			payer,
			to,
			mint,
		).Build())
	}

	instructions = append(instructions, token.NewTransferInstruction(
		1,
		custodyATA,
		toATA,
		payer,
		nil,
	).Build())

	if err := s.signAndSend(ctx, instructions); err != nil {
		return fmt.Errorf("falha ao transferir NFT: %w", err)
	}

	s.Logger.Infow("NFT liberado da custódia",
		"mint", mintAddress, "de", fromPubKey, "para", toPubKey)
	return nil
}

// OwnerOf localiza a conta de token que detém a unidade e retorna o dono dela.
func (s *SolanaLedgerService) OwnerOf(ctx context.Context, mintAddress string) (string, bool, error) {
	mint, err := solana.PublicKeyFromBase58(mintAddress)
	if err != nil {
		return "", false, fmt.Errorf("endereço de mint inválido: %w", err)
	}

	largest, err := s.RPCClient.GetTokenLargestAccounts(ctx, mint, rpc.CommitmentFinalized)
	if err != nil {
		return "", false, fmt.Errorf("falha ao buscar contas do mint: %w", err)
	}
	for _, candidate := range largest.Value {
		if candidate.Amount != "1" {
			continue
		}
		info, err := s.RPCClient.GetAccountInfo(ctx, candidate.Address)
		if err != nil {
			return "", false, fmt.Errorf("falha ao obter conta de token: %w", err)
		}
		account, err := DecodeTokenAccount(info.Value.Data.GetBinary())
		if err != nil {
			return "", false, fmt.Errorf("falha ao decodificar conta de token: %w", err)
		}
		return account.Owner.String(), true, nil
	}
	return "", false, nil
}

// Exists verifica se a conta de mint existe on-chain.
func (s *SolanaLedgerService) Exists(ctx context.Context, mintAddress string) (bool, error) {
	mint, err := solana.PublicKeyFromBase58(mintAddress)
	if err != nil {
		return false, fmt.Errorf("endereço de mint inválido: %w", err)
	}
	info, err := s.RPCClient.GetAccountInfo(ctx, mint)
	if err != nil {
		// RPC devolve erro para conta inexistente.
		return false, nil
	}
	return info != nil && info.Value != nil, nil
}

// DecodeTokenAccount decodifica os bytes de uma conta de token SPL.
func DecodeTokenAccount(data []byte) (token.Account, error) {
	var account token.Account
	if err := account.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return token.Account{}, err
	}
	return account, nil
}

// signAndSend monta, assina (Fee Payer + signatários extras) e envia uma
// transação, aguardando o preflight confirmado.
func (s *SolanaLedgerService) signAndSend(ctx context.Context, instructions []solana.Instruction, extraSigners ...solana.PrivateKey) error {
	resp, err := s.RPCClient.GetRecentBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return fmt.Errorf("falha ao obter blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		resp.Value.Blockhash,
		solana.TransactionPayer(s.FeePayer.PublicKey()),
	)
	if err != nil {
		return fmt.Errorf("falha ao criar transação: %w", err)
	}

	signers := append([]solana.PrivateKey{s.FeePayer}, extraSigners...)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if key.Equals(signers[i].PublicKey()) {
				return &signers[i]
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("falha ao assinar transação: %w", err)
	}

	txID, err := s.RPCClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return fmt.Errorf("falha ao enviar transação: %w", err)
	}
	s.Logger.Debugw("transação enviada à Solana", "tx", txID.String())
	return nil
}

// OfflineLedger é um Ledger local para desenvolvimento sem validador Solana:
// fabrica endereços de mint e aceita qualquer transferência.
type OfflineLedger struct{}

// Mint gera um endereço de mint sintético.
func (OfflineLedger) Mint(ctx context.Context, ownerPubKey string) (string, error) {
	return solana.NewWallet().PublicKey().String(), nil
}

// Transfer não faz nada.
func (OfflineLedger) Transfer(ctx context.Context, mintAddress, fromPubKey, toPubKey string) error {
	return nil
}

// OwnerOf nunca encontra dono on-chain.
func (OfflineLedger) OwnerOf(ctx context.Context, mintAddress string) (string, bool, error) {
	return "", false, nil
}

// Exists considera qualquer mint sintético existente.
func (OfflineLedger) Exists(ctx context.Context, mintAddress string) (bool, error) {
	return mintAddress != "", nil
}
