package parser

import (
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lectorncf/lector-ncf/internal/entity"
)

func newTestParser() *Parser {
	return New(DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var _ = Describe("Parse", func() {
	var p *Parser

	BeforeEach(func() {
		p = newTestParser()
	})

	When("parsing a complete invoice", func() {
		var inv *entity.Invoice

		BeforeEach(func() {
			text := "COMERCIAL EJEMPLO SRL\n" +
				"RNC: 123-456-789\n" +
				"NCF: B0100000123\n" +
				"Fecha: 10/02/2026\n" +
				"Subtotal: RD$1,271.19\n" +
				"ITBIS (18%): RD$228.81\n" +
				"Total: RD$1,500.00\n"
			conf := float32(0.95)
			inv = p.Parse(text, &conf, "factura_20260210_101500.jpg")
		})

		It("extracts the NCF", func() {
			Expect(inv.NCF).To(HaveValue(Equal("B0100000123")))
		})

		It("extracts the normalized RNC", func() {
			Expect(inv.RNC).To(HaveValue(Equal("123456789")))
		})

		It("extracts all three amounts", func() {
			Expect(inv.Amounts.Subtotal).To(HaveValue(Equal(1271.19)))
			Expect(inv.Amounts.Tax).To(HaveValue(Equal(228.81)))
			Expect(inv.Amounts.Total).To(HaveValue(Equal(1500.00)))
		})

		It("extracts the issue date day-first", func() {
			Expect(inv.IssueDate).To(HaveValue(Equal("2026-02-10")))
		})

		It("extracts the masthead business name", func() {
			Expect(inv.BusinessName).To(HaveValue(Equal("COMERCIAL EJEMPLO SRL")))
		})

		It("records processing metadata", func() {
			Expect(inv.Metadata.ImageRef).To(Equal("factura_20260210_101500.jpg"))
			Expect(inv.Metadata.OCRConfidence).To(HaveValue(Equal(float32(0.95))))
			Expect(inv.Metadata.Channel).To(Equal("whatsapp"))
			Expect(inv.Metadata.ProcessedBy).To(Equal("LECTOR-NCF"))
		})

		It("retains the raw text", func() {
			Expect(inv.RawText).To(ContainSubstring("COMERCIAL EJEMPLO SRL"))
		})

		It("produces no warnings", func() {
			Expect(p.Warnings(inv)).To(BeEmpty())
		})
	})

	When("parsing a partial invoice", func() {
		var inv *entity.Invoice

		BeforeEach(func() {
			text := "FACTURA\nNCF: B1500000456\nTotal: RD$2,350.00\n"
			inv = p.Parse(text, nil, "")
		})

		It("extracts what is present", func() {
			Expect(inv.NCF).To(HaveValue(Equal("B1500000456")))
			Expect(inv.Amounts.Total).To(HaveValue(Equal(2350.00)))
		})

		It("leaves the rest absent", func() {
			Expect(inv.RNC).To(BeNil())
			Expect(inv.Amounts.Subtotal).To(BeNil())
			Expect(inv.Amounts.Tax).To(BeNil())
		})

		It("does not infer amounts from a single known value", func() {
			Expect(inv.Amounts.Subtotal).To(BeNil())
			Expect(inv.Amounts.Tax).To(BeNil())
		})

		It("warns about the missing fields", func() {
			Expect(p.Warnings(inv)).To(ContainElement("RNC no encontrado"))
			Expect(p.Warnings(inv)).NotTo(ContainElement("NCF no encontrado"))
		})
	})

	When("parsing empty input", func() {
		It("returns a valid record with every field absent", func() {
			inv := p.Parse("", nil, "")
			Expect(inv).NotTo(BeNil())
			Expect(inv.ID).NotTo(BeZero())
			Expect(inv.NCF).To(BeNil())
			Expect(inv.RNC).To(BeNil())
			Expect(inv.BusinessName).To(BeNil())
			Expect(inv.IssueDate).To(BeNil())
			Expect(inv.Amounts.Total).To(BeNil())
			Expect(inv.Amounts.Currency).To(Equal("DOP"))
		})
	})

	When("parsing the same text twice", func() {
		It("yields identical fields apart from id and timestamp", func() {
			text := "COLMADO DONA ANA\nRNC: 101019921\nNCF: B0200001111\nTotal: 840.50\n"
			a := p.Parse(text, nil, "img.jpg")
			b := p.Parse(text, nil, "img.jpg")
			Expect(a.ID).NotTo(Equal(b.ID))
			Expect(a.NCF).To(Equal(b.NCF))
			Expect(a.RNC).To(Equal(b.RNC))
			Expect(a.BusinessName).To(Equal(b.BusinessName))
			Expect(a.IssueDate).To(Equal(b.IssueDate))
			Expect(a.Amounts).To(Equal(b.Amounts))
		})
	})
})

var _ = Describe("extractNCF", func() {
	p := newTestParser()

	It("recovers an NCF with internal whitespace", func() {
		Expect(p.extractNCF("Comprobante B 01 00000123 emitido")).To(HaveValue(Equal("B0100000123")))
	})

	It("uppercases lowercase candidates", func() {
		Expect(p.extractNCF("ncf: b0100000123")).To(HaveValue(Equal("B0100000123")))
	})

	It("skips candidates with invalid series", func() {
		// 17 is outside both accepted series ranges; 31 is not.
		Expect(p.extractNCF("B1700000001 luego B3100000001")).To(HaveValue(Equal("B3100000001")))
	})

	It("returns nil when no candidate validates", func() {
		Expect(p.extractNCF("C0100000123 y B17 00000001")).To(BeNil())
	})
})

var _ = Describe("extractRNC", func() {
	p := newTestParser()

	It("accepts a labeled plain run", func() {
		Expect(p.extractRNC("RNC: 101019921")).To(HaveValue(Equal("101019921")))
	})

	It("accepts the R.N.C spelling", func() {
		Expect(p.extractRNC("R.N.C.: 101019921")).To(HaveValue(Equal("101019921")))
	})

	It("accepts a cedula-grouped labeled run", func() {
		Expect(p.extractRNC("RNC: 1-8311147-2")).To(HaveValue(Equal("183111472")))
	})

	It("normalizes an eleven-digit grouped run", func() {
		Expect(p.extractRNC("cedula 123-456-789-01 del cliente")).To(HaveValue(Equal("12345678901")))
	})

	It("never accepts ten digits", func() {
		Expect(p.extractRNC("RNC: 1234567890")).To(BeNil())
	})

	It("prefers labeled matches over earlier bare runs", func() {
		got := p.extractRNC("ref 999888777\nRNC: 101019921")
		Expect(got).To(HaveValue(Equal("101019921")))
	})

	It("falls back to a bare nine-digit run", func() {
		Expect(p.extractRNC("contribuyente 131047939 registrado")).To(HaveValue(Equal("131047939")))
	})
})

var _ = Describe("extractBusinessName", func() {
	p := newTestParser()

	It("takes the text after the colon on a labeled line", func() {
		got := p.extractBusinessName("Razón Social: SUPERMERCADO LA ECONOMIA SRL\nRNC: 123456789")
		Expect(got).To(HaveValue(Equal("SUPERMERCADO LA ECONOMIA SRL")))
	})

	It("takes the next line when the label has no colon", func() {
		got := p.extractBusinessName("Razon Social\nFERRETERIA EL CLAVO\notra linea")
		Expect(got).To(HaveValue(Equal("FERRETERIA EL CLAVO")))
	})

	It("rejects labeled names of three characters or fewer", func() {
		got := p.extractBusinessName("F-001\nNo. 2\nTel 809\nRNC 1\nFecha\nNombre: AB")
		Expect(got).To(BeNil())
	})

	It("falls back to a digit-free masthead line", func() {
		got := p.extractBusinessName("FARMACIA SAN JUAN\nCalle 27 #4\nTotal: 100.00")
		Expect(got).To(HaveValue(Equal("FARMACIA SAN JUAN")))
	})

	It("ignores masthead lines past the fifth", func() {
		got := p.extractBusinessName("1\n2\n3\n4\n5\nDISTRIBUIDORA NORTE")
		Expect(got).To(BeNil())
	})
})

var _ = Describe("extractDate", func() {
	p := newTestParser()

	It("parses a day-first slash date", func() {
		Expect(p.extractDate("Fecha: 10/02/2026")).To(HaveValue(Equal("2026-02-10")))
	})

	It("parses a year-first date", func() {
		Expect(p.extractDate("Emitida 2026-02-10")).To(HaveValue(Equal("2026-02-10")))
	})

	It("expands two-digit years", func() {
		Expect(p.extractDate("Fecha: 5/3/26")).To(HaveValue(Equal("2026-03-05")))
	})

	It("falls back to month-first when day-first is not a real date", func() {
		// 02/25 cannot be day-first (month 25), so it reads as Feb 25th.
		Expect(p.extractDate("Fecha: 02/25/2026")).To(HaveValue(Equal("2026-02-25")))
	})

	It("skips unparseable candidates and keeps scanning", func() {
		Expect(p.extractDate("31/31/2026 luego 15/06/2026")).To(HaveValue(Equal("2026-06-15")))
	})

	It("returns nil when nothing parses", func() {
		Expect(p.extractDate("sin fecha aqui")).To(BeNil())
	})
})

var _ = Describe("parseAmount", func() {
	p := newTestParser()

	It("parses US thousands grouping", func() {
		Expect(p.parseAmount("Total: RD$1,234.56")).To(HaveValue(Equal(1234.56)))
	})

	It("parses a plain decimal", func() {
		Expect(p.parseAmount("1234.56")).To(HaveValue(Equal(1234.56)))
	})

	It("parses European grouping", func() {
		Expect(p.parseAmount("Total: RD$1.234,56")).To(HaveValue(Equal(1234.56)))
	})

	It("strips the DOP marker", func() {
		Expect(p.parseAmount("DOP 450.00")).To(HaveValue(Equal(450.00)))
	})

	It("rejects plain decimals at or above one million", func() {
		Expect(p.parseAmount("1000000.00")).To(BeNil())
	})

	It("returns nil for fragments without an amount", func() {
		Expect(p.parseAmount("ITBIS (18%)")).To(BeNil())
	})
})

var _ = Describe("extractAmounts", func() {
	p := newTestParser()

	It("does not let total match inside subtotal", func() {
		a := p.extractAmounts("Subtotal: 900.00\n")
		Expect(a.Subtotal).To(HaveValue(Equal(900.00)))
		Expect(a.Total).To(BeNil())
	})

	It("finds an amount on the line after the keyword", func() {
		a := p.extractAmounts("TOTAL\nRD$1,500.00\n")
		Expect(a.Total).To(HaveValue(Equal(1500.00)))
	})

	It("resolves the three fields independently", func() {
		a := p.extractAmounts("Sub-Total 500.00\nITBIS 90.00\nTotal General 590.00\n")
		Expect(a.Subtotal).To(HaveValue(Equal(500.00)))
		Expect(a.Tax).To(HaveValue(Equal(90.00)))
		Expect(a.Total).To(HaveValue(Equal(590.00)))
	})

	It("takes the first amount on a keyword line", func() {
		a := p.extractAmounts("ITBIS 90.00 sobre 500.00\n")
		Expect(a.Tax).To(HaveValue(Equal(90.00)))
	})
})

var _ = Describe("Reconcile", func() {
	It("fills a missing total", func() {
		a := Reconcile(entity.InvoiceAmounts{
			Subtotal: entity.Float64Ptr(1271.19),
			Tax:      entity.Float64Ptr(228.81),
		})
		Expect(a.Total).To(HaveValue(Equal(1500.00)))
	})

	It("fills a missing subtotal", func() {
		a := Reconcile(entity.InvoiceAmounts{
			Tax:   entity.Float64Ptr(228.81),
			Total: entity.Float64Ptr(1500.00),
		})
		Expect(a.Subtotal).To(HaveValue(Equal(1271.19)))
	})

	It("fills a missing itbis", func() {
		a := Reconcile(entity.InvoiceAmounts{
			Subtotal: entity.Float64Ptr(1271.19),
			Total:    entity.Float64Ptr(1500.00),
		})
		Expect(a.Tax).To(HaveValue(Equal(228.81)))
	})

	It("does nothing with fewer than two known amounts", func() {
		a := Reconcile(entity.InvoiceAmounts{Total: entity.Float64Ptr(1500.00)})
		Expect(a.Subtotal).To(BeNil())
		Expect(a.Tax).To(BeNil())
	})

	It("does not touch three known amounts", func() {
		a := Reconcile(entity.InvoiceAmounts{
			Subtotal: entity.Float64Ptr(1000.00),
			Tax:      entity.Float64Ptr(100.00),
			Total:    entity.Float64Ptr(1500.00),
		})
		Expect(a.Total).To(HaveValue(Equal(1500.00)))
	})
})
