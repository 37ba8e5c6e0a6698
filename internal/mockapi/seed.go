package mockapi

// Seeded returns a server populated with a small, self-consistent data set:
// one signer (budi / secret, passphrase 123456), colleagues in the same
// department, pending and completed documents, and dispositions.
func Seeded() *Server {
	s := New()
	s.AddUser(User{ID: 42, Email: "budi@example.go.id", Username: "budi", Password: "secret", Passphrase: "123456",
		Name: "Budi Santoso", SKPD: "D1", SKPDName: "Dinas Komunikasi dan Informatika", Level: "3"})
	s.AddUser(User{ID: 7, Email: "sarah@example.go.id", Username: "sarah", Password: "secret", Passphrase: "654321",
		Name: "Sarah Johnson", SKPD: "D1", SKPDName: "Dinas Komunikasi dan Informatika", Level: "2"})
	s.AddUser(User{ID: 8, Email: "ahmad@example.go.id", Username: "ahmad", Password: "secret", Passphrase: "111111",
		Name: "Ahmad Fauzi", SKPD: "D1", SKPDName: "Dinas Komunikasi dan Informatika", Level: "3"})
	s.AddUser(User{ID: 9, Email: "lina@example.go.id", Username: "lina", Password: "secret", Passphrase: "222222",
		Name: "Lina Marlina", SKPD: "D2", SKPDName: "Bagian Hukum", Level: "3"})

	s.AddDocument(Document{ID: 1, Title: "Employment Contract", Status: "active", CreatedAt: "2025-04-05 09:12:00",
		FromUserID: 7, ToUserID: 42, Type: "elektronik", File: "uploads/employment-contract.pdf",
		Description: "# Employment Contract\n\nThis agreement is made between the **Employer** and the **Employee**.\n\n- Term: 12 months\n- Probation: 3 months\n"})
	s.AddDocument(Document{ID: 2, Title: "Purchase Agreement", Status: "active", CreatedAt: "2025-04-06 10:30:00",
		FromUserID: 8, ToUserID: 42, Type: "elektronik", File: "uploads/purchase-agreement.pdf",
		Description: "# Purchase Agreement\n\nThe buyer agrees to purchase the goods listed in *Schedule A*.\n"})
	s.AddDocument(Document{ID: 3, Title: "Confidentiality Agreement", Status: "active", CreatedAt: "2025-04-07 14:00:00",
		FromUserID: 9, ToUserID: 42, Type: "elektronik", File: "uploads/nda.pdf",
		Description: "# Confidentiality Agreement\n\nBoth parties agree to keep shared information confidential.\n"})
	s.AddDocument(Document{ID: 4, Title: "Service Agreement", Status: "approved", CreatedAt: "2025-04-08 08:45:00",
		FromUserID: 7, ToUserID: 42, Type: "elektronik", File: "https://files.example.go.id/service-agreement.pdf",
		Description: "# Service Agreement\n\nScope of services and service levels.\n"})
	s.AddDocument(Document{ID: 5, Title: "Budget Revision", Status: "active", CreatedAt: "2025-04-09 11:00:00",
		FromUserID: 42, ToUserID: 7, Type: "elektronik", File: "uploads/budget.pdf",
		Description: "# Budget Revision\n"})

	s.AddDisposition(Disposition{ID: 11, Subject: "Undangan Rapat Koordinasi", FromLetter: "Sekretariat Daerah",
		LetterNo: "005/123/SETDA/2025", LetterDate: "2025-04-01", AcceptDate: "2025-04-02", AgendaNo: "A-17",
		Instruction: "Mohon dihadiri", FromUserID: 7, ToUserIDs: []int{42}, File: "uploads/undangan.pdf",
		Status: "active", Type: "segera", SKPD: "D1", Unread: true})
	s.AddDisposition(Disposition{ID: 12, Subject: "Laporan Keuangan Triwulan", FromLetter: "BPKAD",
		LetterNo: "900/45/BPKAD/2025", LetterDate: "2025-04-03", AcceptDate: "2025-04-04",
		FromUserID: 8, ToUserIDs: []int{42}, File: "uploads/laporan.pdf",
		Status: "active", Type: "biasa", SKPD: "D1", Unread: true})
	s.AddDisposition(Disposition{ID: 13, Subject: "Permohonan Data Statistik", FromLetter: "BPS Kabupaten",
		LetterNo: "070/9/BPS/2025", LetterDate: "2025-04-05", AcceptDate: "2025-04-06", CC: "Kepala Bidang",
		FromUserID: 9, ToUserIDs: []int{42}, File: "uploads/permohonan.pdf",
		Status: "dispath", Type: "biasa", SKPD: "D1"})
	return s
}
