package models

import "errors"

// Taxonomia de erros do marketplace. Cada operação pública rejeita com um
// destes erros (possivelmente embrulhado com contexto via fmt.Errorf e %w);
// os handlers mapeiam cada tipo para um status HTTP distinto.
var (
	// ErrInvalidInput indica dados do chamador malformados ou fora de faixa:
	// arrays paralelos com tamanhos diferentes, preço não positivo, soma de
	// royalties acima do teto, taxa acima do teto.
	ErrInvalidInput = errors.New("entrada inválida")

	// ErrNotAuthorized indica que o chamador não tem o papel exigido
	// (criador, dono atual, vendedor ou dono da plataforma).
	ErrNotAuthorized = errors.New("não autorizado")

	// ErrNotListed indica que o token não tem anúncio ativo.
	ErrNotListed = errors.New("token não está anunciado")

	// ErrTokenNotFound indica que o token nunca foi cunhado.
	ErrTokenNotFound = errors.New("token não encontrado")

	// ErrAccountNotFound indica que a conta referenciada não existe.
	ErrAccountNotFound = errors.New("conta não encontrada")

	// ErrInsufficientPayment indica pagamento abaixo do preço anunciado, ou
	// saldo do comprador insuficiente para cobrir o pagamento ofertado.
	ErrInsufficientPayment = errors.New("pagamento insuficiente")

	// ErrSelfPurchase indica tentativa do vendedor de comprar o próprio anúncio.
	ErrSelfPurchase = errors.New("vendedor não pode comprar o próprio token")

	// ErrNothingToWithdraw indica saque com saldo não distribuído zerado.
	ErrNothingToWithdraw = errors.New("nada a sacar")
)
