package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ferreirogomes/galeria/models"
	"github.com/ferreirogomes/galeria/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService() (*services.MarketplaceService, *MockStore, *MockLedger) {
	mockStore := new(MockStore)
	mockLedger := new(MockLedger)
	service := services.NewMarketplaceService(mockStore, mockLedger, zap.NewNop().Sugar())
	return service, mockStore, mockLedger
}

// TestCreateAndList verifica o caminho feliz da criação: mint no ledger,
// royalties gravados na ordem, metadados inicializados e anúncio aberto.
func TestCreateAndList(t *testing.T) {
	service, mockStore, mockLedger := newTestService()

	creator := models.Account{ID: "criador", SolanaPubKey: "pubCriador"}
	destination := models.Account{ID: "destino", SolanaPubKey: "pubDestino"}
	recipient := models.Account{ID: "beneficiario", SolanaPubKey: "pubBeneficiario"}

	mockStore.On("GetAccount", "criador").Return(creator, true, nil).Once()
	mockStore.On("GetAccount", "destino").Return(destination, true, nil).Once()
	mockStore.On("GetAccount", "beneficiario").Return(recipient, true, nil).Once()
	mockLedger.On("Mint", "pubDestino").Return("mint-abc", nil).Once()
	mockStore.On("InsertToken", mock.AnythingOfType("*models.Token")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Token).ID = 7
	}).Return(nil).Once()
	mockStore.On("SaveRoyaltyShares", mock.AnythingOfType("[]models.RoyaltyShare")).Return(nil).Once()
	mockStore.On("SaveMetadata", mock.AnythingOfType("models.TokenMetadata")).Return(nil).Once()
	mockStore.On("SaveListing", mock.AnythingOfType("models.Listing")).Return(nil).Once()
	mockStore.On("SaveEvent", mock.AnythingOfType("models.MarketEvent")).Return(nil).Once()

	tokenID, err := service.CreateAndList(context.Background(), services.CreateAndListRequest{
		CreatorID:         "criador",
		DestinationID:     "destino",
		BaseReference:     "ipfs://obra",
		Price:             1000,
		RoyaltyRecipients: []string{"beneficiario"},
		RoyaltyShareBps:   []int64{1000},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), tokenID)
	mockStore.AssertExpectations(t)
	mockLedger.AssertExpectations(t)
}

// TestCreateAndListEntradaInvalida verifica que criações malformadas são
// rejeitadas antes de qualquer mutação ou chamada ao ledger.
func TestCreateAndListEntradaInvalida(t *testing.T) {
	cases := []struct {
		name string
		req  services.CreateAndListRequest
	}{
		{
			name: "preço não positivo",
			req: services.CreateAndListRequest{
				CreatorID: "c", DestinationID: "d", Price: 0,
			},
		},
		{
			name: "arrays de royalty com tamanhos diferentes",
			req: services.CreateAndListRequest{
				CreatorID: "c", DestinationID: "d", Price: 100,
				RoyaltyRecipients: []string{"r1", "r2"},
				RoyaltyShareBps:   []int64{100},
			},
		},
		{
			name: "soma de royalties acima do teto",
			req: services.CreateAndListRequest{
				CreatorID: "c", DestinationID: "d", Price: 100,
				RoyaltyRecipients: []string{"r1", "r2"},
				RoyaltyShareBps:   []int64{3000, 2001},
			},
		},
		{
			name: "participação não positiva",
			req: services.CreateAndListRequest{
				CreatorID: "c", DestinationID: "d", Price: 100,
				RoyaltyRecipients: []string{"r1"},
				RoyaltyShareBps:   []int64{0},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			service, mockStore, mockLedger := newTestService()

			_, err := service.CreateAndList(context.Background(), c.req)

			assert.ErrorIs(t, err, models.ErrInvalidInput)
			mockLedger.AssertNotCalled(t, "Mint", mock.Anything)
			mockStore.AssertNotCalled(t, "InsertToken", mock.Anything)
		})
	}
}

// purchaseFixture prepara os mocks do cenário de referência: token 1 com
// preço 1000, taxa 250 bps, royalty de 1000 bps para um beneficiário.
func purchaseFixture(mockStore *MockStore) {
	token := models.Token{ID: 1, CreatorID: "criador", OwnerID: "vendedor", MintAddress: "mint-abc"}
	listing := models.Listing{TokenID: 1, SellerID: "vendedor", Price: 1000, Active: true}

	mockStore.On("GetToken", int64(1)).Return(token, true, nil).Once()
	mockStore.On("GetListing", int64(1)).Return(listing, true, nil).Once()
	mockStore.On("GetAccount", "comprador").Return(models.Account{ID: "comprador", SolanaPubKey: "pubComprador"}, true, nil).Once()
	mockStore.On("GetAccount", "vendedor").Return(models.Account{ID: "vendedor", SolanaPubKey: "pubVendedor"}, true, nil).Once()
	mockStore.On("GetMarketplaceConfig").Return(models.MarketplaceConfig{FeeBps: 250, OwnerAccountID: "plataforma"}, nil).Once()
	mockStore.On("GetRoyaltyShares", int64(1)).Return([]models.RoyaltyShare{
		{TokenID: 1, Position: 0, RecipientID: "beneficiario", ShareBps: 1000},
	}, nil).Once()
}

// TestPurchase verifica o cenário de referência: pagamento exato de 1000
// rende taxa 25, royalty 100 (integral ao beneficiário) e 875 ao vendedor.
func TestPurchase(t *testing.T) {
	service, mockStore, mockLedger := newTestService()
	purchaseFixture(mockStore)

	mockStore.On("DebitBalance", "comprador", int64(1000)).Return(true, nil).Once()
	mockStore.On("DeactivateListing", int64(1), mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockStore.On("UpdateTokenOwner", int64(1), "comprador").Return(nil).Once()
	mockLedger.On("Transfer", "mint-abc", "pubVendedor", "pubComprador").Return(nil).Once()
	mockStore.On("CreditBalance", "beneficiario", int64(100)).Return(nil).Once()
	mockStore.On("CreditBalance", "vendedor", int64(875)).Return(nil).Once()
	mockStore.On("CreditBalance", "plataforma", int64(25)).Return(nil).Once()
	mockStore.On("SaveEvent", mock.AnythingOfType("models.MarketEvent")).Return(nil).Twice()

	err := service.Purchase(context.Background(), 1, "comprador", 1000)

	require.NoError(t, err)
	mockStore.AssertExpectations(t)
	mockLedger.AssertExpectations(t)
	// Sem excedente, nenhum reembolso ao comprador.
	mockStore.AssertNotCalled(t, "CreditBalance", "comprador", mock.Anything)
}

// TestPurchaseComExcedente verifica o reembolso: pagamento de 1500 contra
// preço 1000 devolve 500 ao comprador; as demais parcelas não mudam.
func TestPurchaseComExcedente(t *testing.T) {
	service, mockStore, mockLedger := newTestService()
	purchaseFixture(mockStore)

	mockStore.On("DebitBalance", "comprador", int64(1500)).Return(true, nil).Once()
	mockStore.On("DeactivateListing", int64(1), mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockStore.On("UpdateTokenOwner", int64(1), "comprador").Return(nil).Once()
	mockLedger.On("Transfer", "mint-abc", "pubVendedor", "pubComprador").Return(nil).Once()
	mockStore.On("CreditBalance", "beneficiario", int64(100)).Return(nil).Once()
	mockStore.On("CreditBalance", "vendedor", int64(875)).Return(nil).Once()
	mockStore.On("CreditBalance", "plataforma", int64(25)).Return(nil).Once()
	mockStore.On("CreditBalance", "comprador", int64(500)).Return(nil).Once()
	mockStore.On("SaveEvent", mock.AnythingOfType("models.MarketEvent")).Return(nil).Twice()

	err := service.Purchase(context.Background(), 1, "comprador", 1500)

	require.NoError(t, err)
	mockStore.AssertExpectations(t)
	mockLedger.AssertExpectations(t)
}

// TestPurchaseSobraDeArredondamento verifica que a sobra da distribuição
// proporcional fica retida no saldo não distribuído, e não com o último
// beneficiário.
func TestPurchaseSobraDeArredondamento(t *testing.T) {
	service, mockStore, mockLedger := newTestService()

	token := models.Token{ID: 2, CreatorID: "criador", OwnerID: "vendedor", MintAddress: "mint-def"}
	listing := models.Listing{TokenID: 2, SellerID: "vendedor", Price: 1000, Active: true}
	mockStore.On("GetToken", int64(2)).Return(token, true, nil).Once()
	mockStore.On("GetListing", int64(2)).Return(listing, true, nil).Once()
	mockStore.On("GetAccount", "comprador").Return(models.Account{ID: "comprador", SolanaPubKey: "pubComprador"}, true, nil).Once()
	mockStore.On("GetAccount", "vendedor").Return(models.Account{ID: "vendedor", SolanaPubKey: "pubVendedor"}, true, nil).Once()
	mockStore.On("GetMarketplaceConfig").Return(models.MarketplaceConfig{FeeBps: 250, OwnerAccountID: "plataforma"}, nil).Once()
	// 333 + 667 = 1000 bps → royalty de 100; pisos 33 e 66, sobra 1.
	mockStore.On("GetRoyaltyShares", int64(2)).Return([]models.RoyaltyShare{
		{TokenID: 2, Position: 0, RecipientID: "r1", ShareBps: 333},
		{TokenID: 2, Position: 1, RecipientID: "r2", ShareBps: 667},
	}, nil).Once()

	mockStore.On("DebitBalance", "comprador", int64(1000)).Return(true, nil).Once()
	mockStore.On("DeactivateListing", int64(2), mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockStore.On("UpdateTokenOwner", int64(2), "comprador").Return(nil).Once()
	mockLedger.On("Transfer", "mint-def", "pubVendedor", "pubComprador").Return(nil).Once()
	mockStore.On("CreditBalance", "r1", int64(33)).Return(nil).Once()
	mockStore.On("CreditBalance", "r2", int64(66)).Return(nil).Once()
	mockStore.On("AddToUndistributed", int64(1)).Return(nil).Once()
	mockStore.On("CreditBalance", "vendedor", int64(875)).Return(nil).Once()
	mockStore.On("CreditBalance", "plataforma", int64(25)).Return(nil).Once()
	mockStore.On("SaveEvent", mock.AnythingOfType("models.MarketEvent")).Return(nil).Twice()

	err := service.Purchase(context.Background(), 2, "comprador", 1000)

	require.NoError(t, err)
	mockStore.AssertExpectations(t)
}

// TestPurchaseAnuncioInativo verifica a rejeição de compra sobre anúncio já
// fechado — é também o que acontece numa segunda compra do mesmo token.
func TestPurchaseAnuncioInativo(t *testing.T) {
	service, mockStore, _ := newTestService()

	token := models.Token{ID: 1, OwnerID: "novo-dono", MintAddress: "mint-abc"}
	mockStore.On("GetToken", int64(1)).Return(token, true, nil).Once()
	mockStore.On("GetListing", int64(1)).Return(models.Listing{TokenID: 1, SellerID: "vendedor", Price: 1000, Active: false}, true, nil).Once()

	err := service.Purchase(context.Background(), 1, "comprador", 1000)

	assert.ErrorIs(t, err, models.ErrNotListed)
	mockStore.AssertNotCalled(t, "DebitBalance", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "DeactivateListing", mock.Anything, mock.Anything)
}

// TestPurchasePagamentoInsuficiente verifica pagamento abaixo do preço.
func TestPurchasePagamentoInsuficiente(t *testing.T) {
	service, mockStore, _ := newTestService()

	token := models.Token{ID: 1, OwnerID: "vendedor", MintAddress: "mint-abc"}
	mockStore.On("GetToken", int64(1)).Return(token, true, nil).Once()
	mockStore.On("GetListing", int64(1)).Return(models.Listing{TokenID: 1, SellerID: "vendedor", Price: 1000, Active: true}, true, nil).Once()

	err := service.Purchase(context.Background(), 1, "comprador", 999)

	assert.ErrorIs(t, err, models.ErrInsufficientPayment)
	mockStore.AssertNotCalled(t, "DebitBalance", mock.Anything, mock.Anything)
}

// TestPurchasePeloProprioVendedor verifica que o vendedor não compra o
// próprio anúncio e que nada é mutado.
func TestPurchasePeloProprioVendedor(t *testing.T) {
	service, mockStore, _ := newTestService()

	token := models.Token{ID: 1, OwnerID: "vendedor", MintAddress: "mint-abc"}
	mockStore.On("GetToken", int64(1)).Return(token, true, nil).Once()
	mockStore.On("GetListing", int64(1)).Return(models.Listing{TokenID: 1, SellerID: "vendedor", Price: 1000, Active: true}, true, nil).Once()

	err := service.Purchase(context.Background(), 1, "vendedor", 1000)

	assert.ErrorIs(t, err, models.ErrSelfPurchase)
	mockStore.AssertNotCalled(t, "DebitBalance", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "DeactivateListing", mock.Anything, mock.Anything)
}

// TestPurchaseSaldoInsuficiente verifica que saldo custodial abaixo do
// pagamento ofertado rejeita a compra.
func TestPurchaseSaldoInsuficiente(t *testing.T) {
	service, mockStore, _ := newTestService()
	purchaseFixture(mockStore)

	mockStore.On("DebitBalance", "comprador", int64(1000)).Return(false, nil).Once()

	err := service.Purchase(context.Background(), 1, "comprador", 1000)

	assert.ErrorIs(t, err, models.ErrInsufficientPayment)
	mockStore.AssertNotCalled(t, "DeactivateListing", mock.Anything, mock.Anything)
}

// TestPurchaseFalhaNoLedger verifica que a falha da transferência de posse
// aborta a compra: nenhum crédito é distribuído e o erro propaga, levando a
// transação inteira ao rollback.
func TestPurchaseFalhaNoLedger(t *testing.T) {
	service, mockStore, mockLedger := newTestService()
	purchaseFixture(mockStore)

	mockStore.On("DebitBalance", "comprador", int64(1000)).Return(true, nil).Once()
	mockStore.On("DeactivateListing", int64(1), mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockStore.On("UpdateTokenOwner", int64(1), "comprador").Return(nil).Once()
	mockLedger.On("Transfer", "mint-abc", "pubVendedor", "pubComprador").
		Return(errors.New("rpc indisponível")).Once()

	err := service.Purchase(context.Background(), 1, "comprador", 1000)

	require.Error(t, err)
	mockStore.AssertNotCalled(t, "CreditBalance", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "SaveEvent", mock.Anything)
}

// TestPurchaseTokenInexistente verifica a rejeição para token nunca cunhado.
func TestPurchaseTokenInexistente(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetToken", int64(99)).Return(models.Token{}, false, nil).Once()

	err := service.Purchase(context.Background(), 99, "comprador", 1000)

	assert.ErrorIs(t, err, models.ErrTokenNotFound)
}

// TestCancelListing verifica o cancelamento pelo vendedor.
func TestCancelListing(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetToken", int64(1)).Return(models.Token{ID: 1, OwnerID: "vendedor"}, true, nil).Once()
	mockStore.On("GetListing", int64(1)).Return(models.Listing{TokenID: 1, SellerID: "vendedor", Price: 1000, Active: true}, true, nil).Once()
	mockStore.On("DeactivateListing", int64(1), mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockStore.On("SaveEvent", mock.AnythingOfType("models.MarketEvent")).Return(nil).Once()

	err := service.CancelListing(context.Background(), 1, "vendedor")

	require.NoError(t, err)
	mockStore.AssertExpectations(t)
}

// TestCancelListingNaoVendedor verifica que só o vendedor cancela.
func TestCancelListingNaoVendedor(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetToken", int64(1)).Return(models.Token{ID: 1, OwnerID: "vendedor"}, true, nil).Once()
	mockStore.On("GetListing", int64(1)).Return(models.Listing{TokenID: 1, SellerID: "vendedor", Price: 1000, Active: true}, true, nil).Once()

	err := service.CancelListing(context.Background(), 1, "intruso")

	assert.ErrorIs(t, err, models.ErrNotAuthorized)
	mockStore.AssertNotCalled(t, "DeactivateListing", mock.Anything, mock.Anything)
}

// TestUpdateMetadata verifica a mutação pelo criador, com chave duplicada na
// mesma chamada: a última escrita vence e só um upsert acontece por chave.
func TestUpdateMetadata(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetToken", int64(1)).Return(models.Token{ID: 1, CreatorID: "criador", OwnerID: "dono"}, true, nil).Once()
	mockStore.On("SetBaseReference", int64(1), "ipfs://v2").Return(nil).Once()
	mockStore.On("UpsertAttribute", int64(1), "cor", "verde").Return(nil).Once()
	mockStore.On("UpsertAttribute", int64(1), "nivel", "2").Return(nil).Once()
	mockStore.On("TouchMetadata", int64(1), mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockStore.On("SaveEvent", mock.AnythingOfType("models.MarketEvent")).Return(nil).Once()

	err := service.UpdateMetadata(context.Background(), 1, "criador", "ipfs://v2",
		[]string{"cor", "nivel", "cor"},
		[]string{"azul", "2", "verde"})

	require.NoError(t, err)
	mockStore.AssertExpectations(t)
}

// TestUpdateMetadataDonoAtual verifica que o dono atual também pode mutar,
// sem trocar a referência base quando ela vem vazia.
func TestUpdateMetadataDonoAtual(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetToken", int64(1)).Return(models.Token{ID: 1, CreatorID: "criador", OwnerID: "dono"}, true, nil).Once()
	mockStore.On("UpsertAttribute", int64(1), "cor", "azul").Return(nil).Once()
	mockStore.On("TouchMetadata", int64(1), mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockStore.On("SaveEvent", mock.AnythingOfType("models.MarketEvent")).Return(nil).Once()

	err := service.UpdateMetadata(context.Background(), 1, "dono", "", []string{"cor"}, []string{"azul"})

	require.NoError(t, err)
	mockStore.AssertNotCalled(t, "SetBaseReference", mock.Anything, mock.Anything)
}

// TestUpdateMetadataNaoAutorizado verifica que terceiros não mutam metadados
// e que os atributos ficam intactos.
func TestUpdateMetadataNaoAutorizado(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetToken", int64(1)).Return(models.Token{ID: 1, CreatorID: "criador", OwnerID: "dono"}, true, nil).Once()

	err := service.UpdateMetadata(context.Background(), 1, "intruso", "ipfs://v2", []string{"cor"}, []string{"azul"})

	assert.ErrorIs(t, err, models.ErrNotAuthorized)
	mockStore.AssertNotCalled(t, "UpsertAttribute", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "SetBaseReference", mock.Anything, mock.Anything)
}

// TestUpdateMetadataArraysDiferentes verifica a rejeição antes de qualquer
// leitura ou escrita.
func TestUpdateMetadataArraysDiferentes(t *testing.T) {
	service, mockStore, _ := newTestService()

	err := service.UpdateMetadata(context.Background(), 1, "criador", "", []string{"cor", "nivel"}, []string{"azul"})

	assert.ErrorIs(t, err, models.ErrInvalidInput)
	mockStore.AssertNotCalled(t, "GetToken", mock.Anything)
}

// TestSetFeeRateAcimaDoTeto verifica que taxa acima de 1000 bps é rejeitada
// sem tocar a configuração.
func TestSetFeeRateAcimaDoTeto(t *testing.T) {
	service, mockStore, _ := newTestService()

	err := service.SetFeeRate(context.Background(), "plataforma", 1001)

	assert.ErrorIs(t, err, models.ErrInvalidInput)
	mockStore.AssertNotCalled(t, "GetMarketplaceConfig")
	mockStore.AssertNotCalled(t, "SetFeeBps", mock.Anything)
}

// TestSetFeeRateNaoDono verifica o controle de acesso da taxa.
func TestSetFeeRateNaoDono(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetMarketplaceConfig").Return(models.MarketplaceConfig{FeeBps: 250, OwnerAccountID: "plataforma"}, nil).Once()

	err := service.SetFeeRate(context.Background(), "intruso", 300)

	assert.ErrorIs(t, err, models.ErrNotAuthorized)
	mockStore.AssertNotCalled(t, "SetFeeBps", mock.Anything)
}

// TestSetFeeRate verifica a atualização pelo dono da plataforma.
func TestSetFeeRate(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetMarketplaceConfig").Return(models.MarketplaceConfig{FeeBps: 250, OwnerAccountID: "plataforma"}, nil).Once()
	mockStore.On("SetFeeBps", int64(300)).Return(nil).Once()

	err := service.SetFeeRate(context.Background(), "plataforma", 300)

	require.NoError(t, err)
	mockStore.AssertExpectations(t)
}

// TestWithdraw verifica o saque integral do saldo não distribuído: o valor
// creditado ao dono é exatamente o que a varredura atômica retornou.
func TestWithdraw(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetMarketplaceConfig").Return(models.MarketplaceConfig{
		FeeBps: 250, OwnerAccountID: "plataforma", UndistributedBalance: 42,
	}, nil).Once()
	mockStore.On("SweepUndistributed").Return(int64(42), nil).Once()
	mockStore.On("CreditBalance", "plataforma", int64(42)).Return(nil).Once()

	amount, err := service.Withdraw(context.Background(), "plataforma")

	require.NoError(t, err)
	assert.Equal(t, int64(42), amount)
	mockStore.AssertExpectations(t)
}

// TestWithdrawSemSaldo verifica a rejeição quando a varredura encontra zero.
func TestWithdrawSemSaldo(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetMarketplaceConfig").Return(models.MarketplaceConfig{
		FeeBps: 250, OwnerAccountID: "plataforma", UndistributedBalance: 0,
	}, nil).Once()
	mockStore.On("SweepUndistributed").Return(int64(0), nil).Once()

	_, err := service.Withdraw(context.Background(), "plataforma")

	assert.ErrorIs(t, err, models.ErrNothingToWithdraw)
	mockStore.AssertNotCalled(t, "CreditBalance", mock.Anything, mock.Anything)
}

// TestWithdrawDuplicado verifica que dois saques sucessivos não pagam em
// dobro: a primeira varredura leva todo o saldo e a segunda encontra zero,
// então só um crédito acontece.
func TestWithdrawDuplicado(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetMarketplaceConfig").Return(models.MarketplaceConfig{
		FeeBps: 250, OwnerAccountID: "plataforma", UndistributedBalance: 42,
	}, nil).Twice()
	mockStore.On("SweepUndistributed").Return(int64(42), nil).Once()
	mockStore.On("SweepUndistributed").Return(int64(0), nil).Once()
	mockStore.On("CreditBalance", "plataforma", int64(42)).Return(nil).Once()

	amount, err := service.Withdraw(context.Background(), "plataforma")
	require.NoError(t, err)
	assert.Equal(t, int64(42), amount)

	_, err = service.Withdraw(context.Background(), "plataforma")
	assert.ErrorIs(t, err, models.ErrNothingToWithdraw)

	mockStore.AssertNumberOfCalls(t, "CreditBalance", 1)
}

// TestVerifyOwnershipConsistente verifica a conciliação quando o detentor
// on-chain é a carteira do dono interno.
func TestVerifyOwnershipConsistente(t *testing.T) {
	service, mockStore, mockLedger := newTestService()

	mockStore.On("GetToken", int64(1)).Return(models.Token{ID: 1, OwnerID: "dono", MintAddress: "mint-abc"}, true, nil).Once()
	mockStore.On("GetListing", int64(1)).Return(models.Listing{TokenID: 1, Active: false}, true, nil).Once()
	mockLedger.On("Exists", "mint-abc").Return(true, nil).Once()
	mockLedger.On("OwnerOf", "mint-abc").Return("pubDono", true, nil).Once()
	mockStore.On("GetAccount", "dono").Return(models.Account{ID: "dono", SolanaPubKey: "pubDono"}, true, nil).Once()

	report, err := service.VerifyOwnership(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, report.OnChain)
	assert.True(t, report.Consistent)
	assert.Equal(t, "pubDono", report.OnChainOwner)
}

// TestVerifyOwnershipEmCustodia verifica que anúncio ativo conta como
// consistente mesmo com o detentor on-chain sendo a custódia do marketplace.
func TestVerifyOwnershipEmCustodia(t *testing.T) {
	service, mockStore, mockLedger := newTestService()

	mockStore.On("GetToken", int64(1)).Return(models.Token{ID: 1, OwnerID: "dono", MintAddress: "mint-abc"}, true, nil).Once()
	mockStore.On("GetListing", int64(1)).Return(models.Listing{TokenID: 1, SellerID: "dono", Price: 1000, Active: true}, true, nil).Once()
	mockLedger.On("Exists", "mint-abc").Return(true, nil).Once()
	mockLedger.On("OwnerOf", "mint-abc").Return("pubCustodia", true, nil).Once()

	report, err := service.VerifyOwnership(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, report.Listed)
	assert.True(t, report.Consistent)
	mockStore.AssertNotCalled(t, "GetAccount", mock.Anything)
}

// TestVerifyOwnershipMintForaDaChain verifica o relatório para mint ausente.
func TestVerifyOwnershipMintForaDaChain(t *testing.T) {
	service, mockStore, mockLedger := newTestService()

	mockStore.On("GetToken", int64(1)).Return(models.Token{ID: 1, OwnerID: "dono", MintAddress: "mint-abc"}, true, nil).Once()
	mockStore.On("GetListing", int64(1)).Return(models.Listing{}, false, nil).Once()
	mockLedger.On("Exists", "mint-abc").Return(false, nil).Once()

	report, err := service.VerifyOwnership(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, report.OnChain)
	assert.False(t, report.Consistent)
	mockLedger.AssertNotCalled(t, "OwnerOf", mock.Anything)
}

// TestWithdrawNaoDono verifica o controle de acesso do saque.
func TestWithdrawNaoDono(t *testing.T) {
	service, mockStore, _ := newTestService()

	mockStore.On("GetMarketplaceConfig").Return(models.MarketplaceConfig{
		FeeBps: 250, OwnerAccountID: "plataforma", UndistributedBalance: 42,
	}, nil).Once()

	_, err := service.Withdraw(context.Background(), "intruso")

	assert.ErrorIs(t, err, models.ErrNotAuthorized)
	mockStore.AssertNotCalled(t, "SweepUndistributed")
}
